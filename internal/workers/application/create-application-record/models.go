// internal/workers/application/create-application-record/models.go
package createapplicationrecord

import "teamfit-workers/internal/models"

// Input is a submission request. Without an inline snapshot the candidate and
// team are loaded and the chosen slot is re-read for a fresh head count.
type Input struct {
	CandidateID  string            `json:"candidateId"`
	TeamID       string            `json:"teamId"`
	SlotID       string            `json:"slotId"`
	Introduction string            `json:"introduction"`
	Answers      map[string]string `json:"answers"`
	Snapshot     *models.Snapshot  `json:"snapshot,omitempty"`
}

type Output struct {
	ApplicationID     string                    `json:"applicationId"`
	ApplicationStatus string                    `json:"applicationStatus"`
	FitScore          int                       `json:"fitScore"`
	Payload           models.ApplicationPayload `json:"payload"`
	CreatedAt         string                    `json:"createdAt"` // ISO 8601
}
