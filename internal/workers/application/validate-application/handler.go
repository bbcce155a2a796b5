// internal/workers/application/validate-application/handler.go
package validateapplication

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"teamfit-workers/internal/common/camunda"
	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/observability"
	"teamfit-workers/internal/common/validation"
	"teamfit-workers/internal/engine/application"
	"teamfit-workers/internal/models"
	"teamfit-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-application"
)

var (
	ErrInvalidInput       = errors.New("INVALID_INPUT")
	ErrCandidateNotFound  = errors.New("CANDIDATE_NOT_FOUND")
	ErrSlotNotFound       = errors.New("SLOT_NOT_FOUND")
	ErrSnapshotLoadFailed = errors.New("SNAPSHOT_LOAD_FAILED")
)

type Source interface {
	CandidateProfile(ctx context.Context, candidateID string) (models.CandidateProfile, error)
	PositionSlot(ctx context.Context, slotID string) (models.PositionSlot, error)
}

type Handler struct {
	config    *Config
	source    Source
	responder *camunda.JobResponder
	logger    logger.Logger
}

func NewHandler(config *Config, source Source, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		source:    source,
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

// execute only errors when the inputs cannot be resolved. A draft that fails
// validation completes the job with IsValid=false so the process can route it.
func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	candidate, err := h.resolveCandidate(ctx, input)
	if err != nil {
		return nil, err
	}
	slot, err := h.resolveSlot(ctx, input)
	if err != nil {
		return nil, err
	}

	result := validation.Valid()
	result.Merge(prefixed("candidate", validation.ValidateStruct(candidate)))
	result.Merge(prefixed("slot", validation.ValidateStruct(slot)))

	reason := ""
	if !slot.Available() {
		result.Add("slotId", ReasonSlotUnavailable,
			fmt.Sprintf("slot is full (%d/%d)", slot.CurrentCount, slot.MaxCount))
		reason = ReasonSlotUnavailable
	}
	if !application.IsSelectable(slot, candidate) {
		result.Add("slotId", ReasonSlotNotSelectable,
			fmt.Sprintf("candidate level %d is below required level %d", candidate.Level, slot.MinLevel))
		reason = firstReason(reason, ReasonSlotNotSelectable)
	}

	draft := input.Draft
	if draft.SelectedSlotID == nil || *draft.SelectedSlotID != slot.ID {
		result.Add("draft.selectedSlotId", "SLOT_MISMATCH", "draft does not select this slot")
		reason = firstReason(reason, ReasonIncomplete)
	}
	if strings.TrimSpace(draft.IntroductionText) == "" {
		result.Add("draft.introductionText", "BLANK", "introduction must not be blank")
		reason = firstReason(reason, ReasonIncomplete)
	}

	answers, err := validation.ValidateDocument(AnswerSchema(slot), answersDocument(draft.Answers))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	result.Merge(prefixed("draft.answers", answers))

	missing := application.MissingAnswers(draft, slot)
	if len(missing) > 0 {
		reason = firstReason(reason, ReasonIncomplete)
	}
	if !result.Valid {
		reason = firstReason(reason, ReasonInvalid)
	}

	output := &Output{
		IsValid:          result.Valid,
		Reason:           reason,
		ValidationErrors: result.Errors,
		MissingAnswers:   missing,
	}
	if output.ValidationErrors == nil {
		output.ValidationErrors = []validation.ValidationError{}
	}
	if output.MissingAnswers == nil {
		output.MissingAnswers = []string{}
	}

	if result.Valid && application.CanSubmit(draft, &slot) {
		payload := application.BuildPayload(draft, slot)
		output.Payload = &payload
	} else if result.Valid {
		output.IsValid = false
		output.Reason = ReasonIncomplete
	}

	h.logger.Info("validation completed", map[string]interface{}{
		"candidateId": candidate.ID,
		"slotId":      slot.ID,
		"isValid":     output.IsValid,
		"reason":      output.Reason,
		"errorCount":  len(output.ValidationErrors),
	})

	return output, nil
}

// AnswerSchema builds the JSON schema for a slot's answer map. Required
// questions need a non-blank string; answers to unknown questions are rejected.
func AnswerSchema(slot models.PositionSlot) map[string]interface{} {
	properties := make(map[string]interface{}, len(slot.Questions))
	required := make([]interface{}, 0, len(slot.Questions))
	for _, q := range slot.Questions {
		prop := map[string]interface{}{"type": "string"}
		if q.Required {
			prop["minLength"] = 1
			prop["pattern"] = `\S`
			required = append(required, q.ID)
		}
		properties[q.ID] = prop
	}

	schema := map[string]interface{}{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func answersDocument(answers map[string]string) map[string]interface{} {
	doc := make(map[string]interface{}, len(answers))
	for k, v := range answers {
		doc[k] = v
	}
	return doc
}

func prefixed(prefix string, r *validation.ValidationResult) *validation.ValidationResult {
	out := validation.Valid()
	for _, e := range r.Errors {
		field := prefix
		if e.Field != "" {
			field = prefix + "." + e.Field
		}
		out.Add(field, e.Code, e.Message)
	}
	return out
}

func firstReason(current, next string) string {
	if current != "" {
		return current
	}
	return next
}

func (h *Handler) resolveCandidate(ctx context.Context, input *Input) (models.CandidateProfile, error) {
	if input.Candidate != nil {
		candidate, err := input.Candidate.Normalized()
		if err != nil {
			return models.CandidateProfile{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return candidate, nil
	}
	if input.CandidateID == "" {
		return models.CandidateProfile{}, fmt.Errorf("%w: candidateId or candidate is required", ErrInvalidInput)
	}
	profile, err := h.source.CandidateProfile(ctx, input.CandidateID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.CandidateProfile{}, fmt.Errorf("%w: %s", ErrCandidateNotFound, input.CandidateID)
	}
	if err != nil {
		return models.CandidateProfile{}, fmt.Errorf("%w: %v", ErrSnapshotLoadFailed, err)
	}
	return profile, nil
}

func (h *Handler) resolveSlot(ctx context.Context, input *Input) (models.PositionSlot, error) {
	if input.Slot != nil {
		slot, err := input.Slot.Normalized()
		if err != nil {
			return models.PositionSlot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return slot, nil
	}
	slotID := input.SlotID
	if slotID == "" && input.Draft.SelectedSlotID != nil {
		slotID = *input.Draft.SelectedSlotID
	}
	if slotID == "" {
		return models.PositionSlot{}, fmt.Errorf("%w: no slot given and none selected in draft", ErrInvalidInput)
	}
	input.SlotID = slotID

	slot, err := h.source.PositionSlot(ctx, slotID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.PositionSlot{}, fmt.Errorf("%w: %s", ErrSlotNotFound, slotID)
	}
	if err != nil {
		return models.PositionSlot{}, fmt.Errorf("%w: %v", ErrSnapshotLoadFailed, err)
	}
	return slot, nil
}

func toStandardError(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrCandidateNotFound):
		return apperrors.NewCandidateNotFoundError(input.CandidateID)
	case errors.Is(err, ErrSlotNotFound):
		return apperrors.NewSlotNotFoundError(input.SlotID)
	case errors.Is(err, ErrSnapshotLoadFailed):
		return apperrors.NewSnapshotLoadFailedError(err)
	default:
		return apperrors.NewApplicationValidationFailedError(err.Error())
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
