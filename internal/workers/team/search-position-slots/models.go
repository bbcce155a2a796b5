// internal/workers/team/search-position-slots/models.go
package searchpositionslots

import "teamfit-workers/internal/models"

type Input struct {
	Keywords string   `json:"keywords,omitempty"`
	TeamID   string   `json:"teamId,omitempty"`
	Role     string   `json:"role,omitempty"`
	RoleType string   `json:"roleType,omitempty"`
	Skills   []string `json:"skills,omitempty"`
	// CandidateLevel, when set, hides slots whose minimum level is above it.
	CandidateLevel *int       `json:"candidateLevel,omitempty"`
	OpenOnly       bool       `json:"openOnly"`
	SortBy         string     `json:"sortBy,omitempty"`
	Pagination     Pagination `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type SlotHit struct {
	Slot  models.PositionSlot `json:"slot"`
	Score float64             `json:"score"`
}

type Output struct {
	Slots     []SlotHit `json:"slots"`
	TotalHits int64     `json:"totalHits"`
	MaxScore  float64   `json:"maxScore"`
	Took      int64     `json:"took"` // milliseconds
}
