// internal/workers/application/validate-application/models.go
package validateapplication

import (
	"teamfit-workers/internal/common/validation"
	"teamfit-workers/internal/models"
)

// Input carries the draft plus the candidate and slot it is checked against.
// Missing candidate or slot data is loaded by id; the slot id defaults to
// the draft's selection.
type Input struct {
	CandidateID string                   `json:"candidateId,omitempty"`
	Candidate   *models.CandidateProfile `json:"candidate,omitempty"`
	SlotID      string                   `json:"slotId,omitempty"`
	Slot        *models.PositionSlot     `json:"slot,omitempty"`
	Draft       models.ApplicationDraft  `json:"draft"`
}

// Rejection reasons, most severe first.
const (
	ReasonSlotUnavailable   = "SLOT_UNAVAILABLE"
	ReasonSlotNotSelectable = "SLOT_NOT_SELECTABLE"
	ReasonIncomplete        = "APPLICATION_INCOMPLETE"
	ReasonInvalid           = "APPLICATION_VALIDATION_FAILED"
)

type Output struct {
	IsValid          bool                         `json:"isValid"`
	Reason           string                       `json:"reason,omitempty"`
	ValidationErrors []validation.ValidationError `json:"validationErrors"`
	MissingAnswers   []string                     `json:"missingAnswers"`
	Payload          *models.ApplicationPayload   `json:"payload,omitempty"`
}
