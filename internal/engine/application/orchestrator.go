// internal/engine/application/orchestrator.go

// Package application decides which slots a candidate sees, which of them
// can be picked, and when an application draft is complete enough to send.
package application

import (
	"sort"
	"strings"

	"teamfit-workers/internal/engine/fit"
	"teamfit-workers/internal/engine/level"
	"teamfit-workers/internal/models"
)

// SlotOption is a slot annotated for display. Unavailable slots are still
// listed so they can be rendered disabled.
type SlotOption struct {
	Slot         models.PositionSlot `json:"slot"`
	Fit          models.FitResult    `json:"fit"`
	Available    bool                `json:"available"`
	Selectable   bool                `json:"selectable"`
	UnderSkilled bool                `json:"underSkilled"`
	MinLevel     level.LevelInfo     `json:"minLevel"`
}

// AvailableSlots keeps slots that still have capacity, in input order.
func AvailableSlots(all []models.PositionSlot) []models.PositionSlot {
	out := make([]models.PositionSlot, 0, len(all))
	for _, s := range all {
		if s.Available() {
			out = append(out, s)
		}
	}
	return out
}

// RankedSlots orders slots by descending fit score. Ties keep their input order.
func RankedSlots(available []models.PositionSlot, candidate models.CandidateProfile, skills []models.CandidateSkill) []models.PositionSlot {
	scored := scoreAll(available, candidate, skills)
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].fit.Score > scored[j].fit.Score
	})

	out := make([]models.PositionSlot, len(scored))
	for i, s := range scored {
		out[i] = s.slot
	}
	return out
}

// IsSelectable reports whether the candidate meets the slot's minimum level.
// It does not look at capacity.
func IsSelectable(slot models.PositionSlot, candidate models.CandidateProfile) bool {
	return candidate.Level >= slot.MinLevel
}

// CanSubmit reports whether draft is complete for slot.
func CanSubmit(draft models.ApplicationDraft, slot *models.PositionSlot) bool {
	if slot == nil || draft.SelectedSlotID == nil || *draft.SelectedSlotID != slot.ID {
		return false
	}
	if strings.TrimSpace(draft.IntroductionText) == "" {
		return false
	}
	return len(MissingAnswers(draft, *slot)) == 0
}

// MissingAnswers lists required question ids without a non-blank answer,
// in question order.
func MissingAnswers(draft models.ApplicationDraft, slot models.PositionSlot) []string {
	var missing []string
	for _, q := range slot.Questions {
		if !q.Required {
			continue
		}
		if strings.TrimSpace(draft.Answers[q.ID]) == "" {
			missing = append(missing, q.ID)
		}
	}
	return missing
}

// BuildPayload assembles the submission payload. Callers are expected to
// check CanSubmit first.
func BuildPayload(draft models.ApplicationDraft, slot models.PositionSlot) models.ApplicationPayload {
	answers := make(map[string]string, len(draft.Answers))
	for k, v := range draft.Answers {
		answers[k] = v
	}
	return models.ApplicationPayload{
		SlotID:       slot.ID,
		Role:         slot.Role,
		RoleType:     slot.RoleType,
		Introduction: draft.IntroductionText,
		Answers:      answers,
	}
}

// Annotate lists every slot with its fit result. Available slots come first
// in ranked order, followed by full slots in input order.
func Annotate(all []models.PositionSlot, candidate models.CandidateProfile, skills []models.CandidateSkill) []SlotOption {
	scored := scoreAll(all, candidate, skills)

	open := make([]scoredSlot, 0, len(scored))
	var full []scoredSlot
	for _, s := range scored {
		if s.slot.Available() {
			open = append(open, s)
		} else {
			full = append(full, s)
		}
	}
	sort.SliceStable(open, func(i, j int) bool {
		return open[i].fit.Score > open[j].fit.Score
	})

	out := make([]SlotOption, 0, len(scored))
	for _, s := range append(open, full...) {
		out = append(out, SlotOption{
			Slot:         s.slot,
			Fit:          s.fit,
			Available:    s.slot.Available(),
			Selectable:   IsSelectable(s.slot, candidate),
			UnderSkilled: s.fit.SkillsMatched < s.fit.SkillsTotal,
			MinLevel:     level.ThresholdFor(s.slot.MinLevel),
		})
	}
	return out
}

// Suggest returns the best-ranked slot the candidate can both see and pick,
// or nil when there is none.
func Suggest(all []models.PositionSlot, candidate models.CandidateProfile, skills []models.CandidateSkill) *models.PositionSlot {
	for _, s := range RankedSlots(AvailableSlots(all), candidate, skills) {
		if IsSelectable(s, candidate) {
			slot := s
			return &slot
		}
	}
	return nil
}

type scoredSlot struct {
	slot models.PositionSlot
	fit  models.FitResult
}

// scoreAll computes each fit exactly once so sort comparators stay cheap.
func scoreAll(slots []models.PositionSlot, candidate models.CandidateProfile, skills []models.CandidateSkill) []scoredSlot {
	out := make([]scoredSlot, len(slots))
	for i, s := range slots {
		out[i] = scoredSlot{
			slot: s,
			fit:  fit.Score(s, skills, candidate.Level, candidate.PersonalityTag),
		}
	}
	return out
}
