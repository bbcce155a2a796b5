// internal/workers/team/calculate-fit-score/models.go
package calculatefitscore

import "teamfit-workers/internal/models"

// Input carries either inline data or ids to load. Inline values win.
type Input struct {
	CandidateID string                   `json:"candidateId,omitempty"`
	Candidate   *models.CandidateProfile `json:"candidate,omitempty"`
	Skills      []models.CandidateSkill  `json:"skills,omitempty"`
	SlotID      string                   `json:"slotId,omitempty"`
	Slot        *models.PositionSlot     `json:"slot,omitempty"`
}

type Output struct {
	SlotID       string           `json:"slotId"`
	FitScore     int              `json:"fitScore"`
	FitResult    models.FitResult `json:"fitResult"`
	Selectable   bool             `json:"selectable"`
	Available    bool             `json:"available"`
	UnderSkilled bool             `json:"underSkilled"`
}
