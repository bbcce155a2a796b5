// internal/engine/fit/fit.go

// Package fit computes how well a candidate matches a single position slot.
package fit

import (
	"math"
	"strings"

	"teamfit-workers/internal/models"
)

// Weights for slots without skill requirements.
const (
	BaseLevelWeight       = 40
	BasePersonalityWeight = 20
	BaseBaseline          = 40
)

// Weights for slots with skill requirements.
const (
	LevelWeight       = 20
	PersonalityWeight = 20
	SkillWeight       = 60
)

// Score computes the fit of a candidate against slot. It never mutates its
// arguments and always returns a result.
func Score(slot models.PositionSlot, skills []models.CandidateSkill, candidateLevel int, tag *models.PersonalityTag) models.FitResult {
	levelMet := candidateLevel >= slot.MinLevel
	personalityMatch := PersonalityMatches(slot.PreferredPersonalityTag, tag)

	if len(slot.RequiredSkillLevels) == 0 {
		return models.FitResult{
			Score:            weight(levelMet, BaseLevelWeight) + weight(personalityMatch, BasePersonalityWeight) + BaseBaseline,
			LevelMet:         levelMet,
			PersonalityMatch: personalityMatch,
			Details:          []models.SkillDetail{},
		}
	}

	index := indexSkills(skills)
	details := make([]models.SkillDetail, 0, len(slot.RequiredSkillLevels))
	matched := 0

	for _, req := range slot.RequiredSkillLevels {
		detail := models.SkillDetail{
			SkillName:     req.SkillName,
			RequiredLevel: req.MinLevel,
		}
		if lvl, ok := index[normalize(req.SkillName)]; ok {
			candidate := lvl
			detail.CandidateLevel = &candidate
			detail.Met = lvl >= req.MinLevel
		}
		if detail.Met {
			matched++
		}
		details = append(details, detail)
	}

	total := len(slot.RequiredSkillLevels)
	raw := float64(weight(levelMet, LevelWeight)+weight(personalityMatch, PersonalityWeight)) +
		SkillWeight*float64(matched)/float64(total)

	return models.FitResult{
		Score:            int(math.Round(raw)),
		LevelMet:         levelMet,
		PersonalityMatch: personalityMatch,
		SkillsMatched:    matched,
		SkillsTotal:      total,
		Details:          details,
	}
}

// PersonalityMatches is true when there is no preference, or the candidate
// carries exactly the preferred tag.
func PersonalityMatches(preferred, candidate *models.PersonalityTag) bool {
	if preferred == nil {
		return true
	}
	return candidate != nil && *candidate == *preferred
}

// indexSkills keys skills by lower-cased name; the first entry wins on duplicates.
func indexSkills(skills []models.CandidateSkill) map[string]int {
	index := make(map[string]int, len(skills))
	for _, s := range skills {
		key := normalize(s.SkillName)
		if _, exists := index[key]; !exists {
			index[key] = s.Level
		}
	}
	return index
}

func normalize(name string) string {
	return strings.ToLower(name)
}

func weight(ok bool, w int) int {
	if ok {
		return w
	}
	return 0
}
