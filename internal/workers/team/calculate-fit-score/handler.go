// internal/workers/team/calculate-fit-score/handler.go
package calculatefitscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"teamfit-workers/internal/common/camunda"
	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/metrics"
	"teamfit-workers/internal/common/observability"
	"teamfit-workers/internal/common/validation"
	"teamfit-workers/internal/engine/application"
	"teamfit-workers/internal/engine/fit"
	"teamfit-workers/internal/models"
	"teamfit-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "calculate-fit-score"
)

var (
	ErrInvalidInput       = errors.New("INVALID_INPUT")
	ErrCandidateNotFound  = errors.New("CANDIDATE_NOT_FOUND")
	ErrSlotNotFound       = errors.New("SLOT_NOT_FOUND")
	ErrSnapshotLoadFailed = errors.New("SNAPSHOT_LOAD_FAILED")
)

// Source loads whatever the job did not pass inline.
type Source interface {
	CandidateProfile(ctx context.Context, candidateID string) (models.CandidateProfile, error)
	CandidateSkills(ctx context.Context, candidateID string) ([]models.CandidateSkill, error)
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

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	candidate, skills, err := h.resolveCandidate(ctx, input)
	if err != nil {
		return nil, err
	}
	slot, err := h.resolveSlot(ctx, input)
	if err != nil {
		return nil, err
	}

	result := fit.Score(slot, skills, candidate.Level, candidate.PersonalityTag)
	metrics.FitScores.WithLabelValues(TaskType).Observe(float64(result.Score))

	output := &Output{
		SlotID:       slot.ID,
		FitScore:     result.Score,
		FitResult:    result,
		Selectable:   application.IsSelectable(slot, candidate),
		Available:    slot.Available(),
		UnderSkilled: result.SkillsMatched < result.SkillsTotal,
	}

	h.logger.Info("fit score calculated", map[string]interface{}{
		"candidateId":   candidate.ID,
		"slotId":        slot.ID,
		"score":         result.Score,
		"levelMet":      result.LevelMet,
		"skillsMatched": result.SkillsMatched,
		"skillsTotal":   result.SkillsTotal,
	})

	return output, nil
}

func validateInput(input *Input) error {
	if input.Candidate == nil && input.CandidateID == "" {
		return fmt.Errorf("%w: candidateId or candidate is required", ErrInvalidInput)
	}
	if input.Slot == nil && input.SlotID == "" {
		return fmt.Errorf("%w: slotId or slot is required", ErrInvalidInput)
	}

	result := validation.Valid()
	if input.Candidate != nil {
		result.Merge(validation.ValidateStruct(input.Candidate))
	}
	if input.Slot != nil {
		result.Merge(validation.ValidateStruct(input.Slot))
	}
	if !result.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidInput, result.Summary())
	}
	return nil
}

func (h *Handler) resolveCandidate(ctx context.Context, input *Input) (models.CandidateProfile, []models.CandidateSkill, error) {
	if input.Candidate != nil {
		candidate, err := input.Candidate.Normalized()
		if err != nil {
			return models.CandidateProfile{}, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		if input.Skills != nil || candidate.ID == "" {
			return candidate, input.Skills, nil
		}
		skills, err := h.source.CandidateSkills(ctx, candidate.ID)
		if err != nil {
			return models.CandidateProfile{}, nil, fmt.Errorf("%w: %v", ErrSnapshotLoadFailed, err)
		}
		return candidate, skills, nil
	}

	profile, err := h.source.CandidateProfile(ctx, input.CandidateID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.CandidateProfile{}, nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, input.CandidateID)
	}
	if err != nil {
		return models.CandidateProfile{}, nil, fmt.Errorf("%w: %v", ErrSnapshotLoadFailed, err)
	}

	skills := input.Skills
	if skills == nil {
		skills, err = h.source.CandidateSkills(ctx, input.CandidateID)
		if err != nil {
			return models.CandidateProfile{}, nil, fmt.Errorf("%w: %v", ErrSnapshotLoadFailed, err)
		}
	}
	return profile, skills, nil
}

func (h *Handler) resolveSlot(ctx context.Context, input *Input) (models.PositionSlot, error) {
	if input.Slot != nil {
		slot, err := input.Slot.Normalized()
		if err != nil {
			return models.PositionSlot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return slot, nil
	}
	slot, err := h.source.PositionSlot(ctx, input.SlotID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.PositionSlot{}, fmt.Errorf("%w: %s", ErrSlotNotFound, input.SlotID)
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
		return apperrors.NewFitScoreFailedError(err.Error())
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
