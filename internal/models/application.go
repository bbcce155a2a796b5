// internal/models/application.go
package models

type ApplicationDraft struct {
	SelectedSlotID   *string           `json:"selectedSlotId,omitempty"`
	IntroductionText string            `json:"introductionText"`
	Answers          map[string]string `json:"answers"`
}

// ApplicationPayload is what gets handed to the submit callback.
type ApplicationPayload struct {
	SlotID       string            `json:"slotId" validate:"required"`
	Role         Role              `json:"role" validate:"required"`
	RoleType     *RoleType         `json:"roleType,omitempty"`
	Introduction string            `json:"introduction" validate:"required"`
	Answers      map[string]string `json:"answers"`
}

const (
	ApplicationStatusPending   = "pending"
	ApplicationStatusAccepted  = "accepted"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusWithdrawn = "withdrawn"
)

type Application struct {
	ID           string            `json:"id"`
	CandidateID  string            `json:"candidateId"`
	TeamID       string            `json:"teamId"`
	SlotID       string            `json:"slotId"`
	Role         Role              `json:"role"`
	RoleType     *RoleType         `json:"roleType,omitempty"`
	Introduction string            `json:"introduction"`
	Answers      map[string]string `json:"answers"`
	FitScore     int               `json:"fitScore"`
	Status       string            `json:"status"`
	CreatedAt    string            `json:"createdAt"`
}
