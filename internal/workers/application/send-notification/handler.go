// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"teamfit-workers/internal/common/camunda"
	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/observability"
	"teamfit-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-notification"
)

var (
	ErrInvalidInput           = errors.New("INVALID_INPUT")
	ErrRecipientLookupFailed  = errors.New("RECIPIENT_LOOKUP_FAILED")
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

const (
	queryTeamLeaderContact = `
		SELECT u.email, u.phone
		FROM teams t
		JOIN users u ON u.id = t.leader_id
		WHERE t.id = $1`

	queryCandidateContact = `SELECT email, phone FROM users WHERE id = $1`
)

type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

var templates = map[string]models.NotificationTemplate{
	TypeNewApplication: {
		Type:    TypeNewApplication,
		Subject: "New application for your team",
		Body:    "A candidate applied to slot {{slotId}} (fit score {{fitScore}}). Application: {{applicationId}}.",
	},
	TypeApplicationSubmitted: {
		Type:    TypeApplicationSubmitted,
		Subject: "Your application was submitted",
		Body:    "Your application {{applicationId}} for slot {{slotId}} is pending review by the team leader.",
	},
}

var placeholder = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

type contact struct {
	email string
	phone string
}

type Handler struct {
	config    *Config
	db        *sql.DB
	sesClient SESService
	snsClient SNSService
	responder *camunda.JobResponder
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, sesClient SESService, snsClient SNSService, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		db:        db,
		sesClient: sesClient,
		snsClient: snsClient,
		responder: camunda.NewJobResponder(TaskType, log, obs),
		logger:    log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()
	ctx, done := h.responder.Begin(ctx, job)

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		stdErr := apperrors.NewInvalidInputError(fmt.Sprintf("parse input: %v", err))
		h.responder.Fail(ctx, client, job, stdErr)
		done(stdErr)
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		stdErr := toStandardError(err, &input)
		h.responder.Fail(ctx, client, job, stdErr)
		done(stdErr)
		return
	}

	h.responder.Complete(ctx, client, job, output)
	done(nil)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tmpl, ok := templates[input.NotificationType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, input.NotificationType)
	}
	if input.RecipientID == "" {
		return nil, fmt.Errorf("%w: recipientId is required", ErrInvalidInput)
	}

	output := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		Channels:       []string{},
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	to, err := h.recipientContact(ctx, input.RecipientID, input.RecipientType)
	if errors.Is(err, sql.ErrNoRows) {
		h.logger.Warn("recipient not found", map[string]interface{}{
			"recipientId": input.RecipientID,
			"type":        input.RecipientType,
		})
		return output, nil
	}
	if err != nil {
		return nil, err
	}

	data := templateData(input)
	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	if h.config.EmailEnabled && to.email != "" {
		if err := h.sendEmail(ctx, to.email, subject, body); err != nil {
			return nil, fmt.Errorf("%w: email: %v", ErrNotificationSendFailed, err)
		}
		output.Channels = append(output.Channels, ChannelEmail)
	}

	if h.config.SMSEnabled && to.phone != "" && strings.EqualFold(input.Priority, h.config.SMSPriority) {
		if err := h.sendSMS(ctx, to.phone, body); err != nil {
			if len(output.Channels) == 0 {
				return nil, fmt.Errorf("%w: sms: %v", ErrNotificationSendFailed, err)
			}
			h.logger.Warn("sms send failed after email was delivered", map[string]interface{}{
				"error":       err,
				"recipientId": input.RecipientID,
			})
		} else {
			output.Channels = append(output.Channels, ChannelSMS)
		}
	}

	if len(output.Channels) > 0 {
		output.Status = StatusSent
	}

	h.logger.Info("notification processed", map[string]interface{}{
		"notificationId":   output.NotificationID,
		"notificationType": input.NotificationType,
		"recipientType":    input.RecipientType,
		"status":           output.Status,
		"channels":         output.Channels,
	})

	return output, nil
}

func (h *Handler) recipientContact(ctx context.Context, recipientID, recipientType string) (contact, error) {
	var query string
	switch recipientType {
	case RecipientTypeTeamLeader:
		query = queryTeamLeaderContact
	case RecipientTypeCandidate:
		query = queryCandidateContact
	default:
		return contact{}, fmt.Errorf("%w: invalid recipient type %q", ErrInvalidInput, recipientType)
	}

	var email, phone sql.NullString
	err := h.db.QueryRowContext(ctx, query, recipientID).Scan(&email, &phone)
	if errors.Is(err, sql.ErrNoRows) {
		return contact{}, err
	}
	if err != nil {
		return contact{}, fmt.Errorf("%w: %v", ErrRecipientLookupFailed, err)
	}
	return contact{email: email.String, phone: phone.String}, nil
}

func (h *Handler) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(h.config.FromEmail),
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, to, message string) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

func templateData(input *Input) map[string]interface{} {
	data := make(map[string]interface{}, len(input.Metadata)+4)
	for k, v := range input.Metadata {
		data[k] = v
	}
	data["applicationId"] = input.ApplicationID
	data["slotId"] = input.SlotID
	data["priority"] = input.Priority
	if input.FitScore != nil {
		data["fitScore"] = *input.FitScore
	}
	return data
}

// renderTemplate substitutes {{name}} placeholders; unknown names render empty.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		key := placeholder.FindStringSubmatch(match)[1]
		v, ok := data[key]
		if !ok || v == nil {
			return ""
		}
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	})
}

func toStandardError(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrRecipientLookupFailed):
		return apperrors.NewQueryExecutionFailedError("recipient_contact", err)
	default:
		return apperrors.NewNotificationSendFailedError(input.NotificationType, err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
