// internal/workers/application/send-notification/models.go
package sendnotification

// Input addresses either a team's leader (RecipientID is the team id) or a
// candidate (RecipientID is the user id).
type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"`
	NotificationType string                 `json:"notificationType"`
	ApplicationID    string                 `json:"applicationId,omitempty"`
	SlotID           string                 `json:"slotId,omitempty"`
	FitScore         *int                   `json:"fitScore,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"`
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

const (
	TypeNewApplication       = "new_application"
	TypeApplicationSubmitted = "application_submitted"
)

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

const (
	RecipientTypeTeamLeader = "team_leader"
	RecipientTypeCandidate  = "candidate"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const PriorityHigh = "high"
