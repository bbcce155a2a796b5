// internal/workers/team/rank-position-slots/models.go
package rankpositionslots

import (
	"teamfit-workers/internal/engine/application"
	"teamfit-workers/internal/models"
)

type Input struct {
	CandidateID string           `json:"candidateId,omitempty"`
	TeamID      string           `json:"teamId,omitempty"`
	Snapshot    *models.Snapshot `json:"snapshot,omitempty"`
}

type Output struct {
	Options         []application.SlotOption `json:"options"`
	RankedSlotIDs   []string                 `json:"rankedSlotIds"`
	SuggestedSlotID *string                  `json:"suggestedSlotId"`
	AvailableCount  int                      `json:"availableCount"`
	TotalCount      int                      `json:"totalCount"`
}
