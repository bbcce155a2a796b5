// internal/models/notification.go
package models

// NotificationTemplate is a subject and body with {{name}} placeholders.
type NotificationTemplate struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
