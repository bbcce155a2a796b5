// internal/models/team.go
package models

import (
	"fmt"
	"strings"
)

// PersonalityTag is the archetype label shared by candidates and slot preferences.
type PersonalityTag string

const (
	PersonalityTiger   PersonalityTag = "tiger"
	PersonalityOwl     PersonalityTag = "owl"
	PersonalityDolphin PersonalityTag = "dolphin"
	PersonalityKoala   PersonalityTag = "koala"
)

func (p PersonalityTag) Valid() bool {
	switch p {
	case PersonalityTiger, PersonalityOwl, PersonalityDolphin, PersonalityKoala:
		return true
	}
	return false
}

// ParsePersonalityTag returns nil for an empty value.
func ParsePersonalityTag(raw string) (*PersonalityTag, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return nil, nil
	}
	tag := PersonalityTag(raw)
	if !tag.Valid() {
		return nil, fmt.Errorf("unknown personality tag: %s", raw)
	}
	return &tag, nil
}

// NormalizePersonalityTag re-parses a decoded tag. An empty tag becomes nil.
func NormalizePersonalityTag(tag *PersonalityTag) (*PersonalityTag, error) {
	if tag == nil {
		return nil, nil
	}
	return ParsePersonalityTag(string(*tag))
}

type Role string

const (
	RoleLeader    Role = "leader"
	RoleDeveloper Role = "developer"
	RoleDesigner  Role = "designer"
	RolePlanner   Role = "planner"
	RoleMarketer  Role = "marketer"
	RoleOther     Role = "other"
)

type RoleType string

const (
	RoleTypeFrontend  RoleType = "frontend"
	RoleTypeBackend   RoleType = "backend"
	RoleTypeFullstack RoleType = "fullstack"
	RoleTypeMobile    RoleType = "mobile"
	RoleTypeAI        RoleType = "ai"
	RoleTypeDevOps    RoleType = "devops"
	RoleTypeUIUX      RoleType = "uiux"
	RoleTypeGraphic   RoleType = "graphic"
	RoleTypePM        RoleType = "pm"
	RoleTypeContent   RoleType = "content"
)

type CandidateProfile struct {
	ID             string          `json:"id"`
	Level          int             `json:"level" validate:"min=1,max=5"`
	PersonalityTag *PersonalityTag `json:"personalityTag,omitempty"`
}

// Normalized returns a copy with the personality tag in canonical form.
func (c CandidateProfile) Normalized() (CandidateProfile, error) {
	tag, err := NormalizePersonalityTag(c.PersonalityTag)
	if err != nil {
		return CandidateProfile{}, fmt.Errorf("candidate %s: %w", c.ID, err)
	}
	c.PersonalityTag = tag
	return c, nil
}

// CandidateSkill is identified by its lower-cased name.
type CandidateSkill struct {
	SkillName string `json:"skillName" validate:"required"`
	Level     int    `json:"level" validate:"min=0"`
}

type SkillRequirement struct {
	SkillName string `json:"skillName" validate:"required"`
	MinLevel  int    `json:"minLevel"`
}

type Question struct {
	ID       string `json:"id" validate:"required"`
	Text     string `json:"text"`
	Required bool   `json:"required"`
}

// PositionSlot is a read-only snapshot of one open position in a team.
type PositionSlot struct {
	ID                      string             `json:"id" validate:"required"`
	TeamID                  string             `json:"teamId,omitempty"`
	Role                    Role               `json:"role" validate:"required"`
	RoleType                *RoleType          `json:"roleType,omitempty"`
	PreferredPersonalityTag *PersonalityTag    `json:"preferredPersonalityTag,omitempty"`
	MinLevel                int                `json:"minLevel"`
	RequiredSkillLevels     []SkillRequirement `json:"requiredSkillLevels" validate:"dive"`
	Questions               []Question         `json:"questions" validate:"dive"`
	CurrentCount            int                `json:"currentCount" validate:"min=0"`
	MaxCount                int                `json:"maxCount" validate:"min=0"`
}

// Normalized returns a copy with the preferred personality tag in canonical form.
func (s PositionSlot) Normalized() (PositionSlot, error) {
	tag, err := NormalizePersonalityTag(s.PreferredPersonalityTag)
	if err != nil {
		return PositionSlot{}, fmt.Errorf("slot %s: %w", s.ID, err)
	}
	s.PreferredPersonalityTag = tag
	return s, nil
}

func (s PositionSlot) Available() bool {
	return s.CurrentCount < s.MaxCount
}

// Question returns the question with the given id.
func (s PositionSlot) Question(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

type SkillDetail struct {
	SkillName      string `json:"skillName"`
	RequiredLevel  int    `json:"requiredLevel"`
	CandidateLevel *int   `json:"candidateLevel"`
	Met            bool   `json:"met"`
}

type FitResult struct {
	Score            int           `json:"score"`
	LevelMet         bool          `json:"levelMet"`
	PersonalityMatch bool          `json:"personalityMatch"`
	SkillsMatched    int           `json:"skillsMatched"`
	SkillsTotal      int           `json:"skillsTotal"`
	Details          []SkillDetail `json:"details"`
}

// Snapshot is the pre-fetched input for one candidate against one team.
type Snapshot struct {
	Candidate CandidateProfile `json:"candidate"`
	Skills    []CandidateSkill `json:"skills"`
	Slots     []PositionSlot   `json:"slots"`
}

// Normalized returns a copy with every personality tag in canonical form.
func (s Snapshot) Normalized() (Snapshot, error) {
	candidate, err := s.Candidate.Normalized()
	if err != nil {
		return Snapshot{}, err
	}
	s.Candidate = candidate
	if s.Slots == nil {
		return s, nil
	}
	slots := make([]PositionSlot, len(s.Slots))
	for i, slot := range s.Slots {
		if slots[i], err = slot.Normalized(); err != nil {
			return Snapshot{}, err
		}
	}
	s.Slots = slots
	return s, nil
}
