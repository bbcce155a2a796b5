// internal/workers/team/rank-position-slots/handler.go
package rankpositionslots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"teamfit-workers/internal/common/camunda"
	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/metrics"
	"teamfit-workers/internal/common/observability"
	"teamfit-workers/internal/engine/application"
	"teamfit-workers/internal/models"
	"teamfit-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "rank-position-slots"
)

var (
	ErrInvalidInput       = errors.New("INVALID_INPUT")
	ErrCandidateNotFound  = errors.New("CANDIDATE_NOT_FOUND")
	ErrSnapshotLoadFailed = errors.New("SNAPSHOT_LOAD_FAILED")
)

type SnapshotLoader interface {
	Snapshot(ctx context.Context, candidateID, teamID string) (models.Snapshot, error)
}

type Handler struct {
	config    *Config
	loader    SnapshotLoader
	responder *camunda.JobResponder
	logger    logger.Logger
}

func NewHandler(config *Config, loader SnapshotLoader, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		loader:    loader,
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
	snap, err := h.snapshot(ctx, input)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	options := application.Annotate(snap.Slots, snap.Candidate, snap.Skills)
	ranked := make([]string, 0, len(options))
	for _, opt := range options {
		if !opt.Available {
			continue
		}
		metrics.FitScores.WithLabelValues(TaskType).Observe(float64(opt.Fit.Score))
		ranked = append(ranked, opt.Slot.ID)
	}
	availableCount := len(ranked)
	if h.config.MaxItems > 0 && len(ranked) > h.config.MaxItems {
		ranked = ranked[:h.config.MaxItems]
	}

	output := &Output{
		Options:        options,
		RankedSlotIDs:  ranked,
		AvailableCount: availableCount,
		TotalCount:     len(snap.Slots),
	}
	if suggested := application.Suggest(snap.Slots, snap.Candidate, snap.Skills); suggested != nil {
		id := suggested.ID
		output.SuggestedSlotID = &id
	}

	duration := time.Since(start)
	h.logger.Info("ranking completed", map[string]interface{}{
		"candidateId":    snap.Candidate.ID,
		"slotCount":      len(snap.Slots),
		"availableCount": availableCount,
		"suggested":      output.SuggestedSlotID != nil,
		"durationMs":     duration.Milliseconds(),
	})
	if duration > h.config.SlowThreshold {
		h.logger.Warn("ranking exceeded threshold", map[string]interface{}{
			"durationMs":  duration.Milliseconds(),
			"thresholdMs": h.config.SlowThreshold.Milliseconds(),
		})
	}

	return output, nil
}

func (h *Handler) snapshot(ctx context.Context, input *Input) (models.Snapshot, error) {
	if input.Snapshot != nil {
		snap, err := input.Snapshot.Normalized()
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return snap, nil
	}
	if input.CandidateID == "" || input.TeamID == "" {
		return models.Snapshot{}, fmt.Errorf("%w: snapshot or candidateId and teamId are required", ErrInvalidInput)
	}

	snap, err := h.loader.Snapshot(ctx, input.CandidateID, input.TeamID)
	if errors.Is(err, repository.ErrNotFound) {
		return models.Snapshot{}, fmt.Errorf("%w: %s", ErrCandidateNotFound, input.CandidateID)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotLoadFailed, err)
	}
	return snap, nil
}

func toStandardError(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrCandidateNotFound):
		return apperrors.NewCandidateNotFoundError(input.CandidateID)
	case errors.Is(err, ErrSnapshotLoadFailed):
		return apperrors.NewSnapshotLoadFailedError(err)
	default:
		return apperrors.NewRankingFailedError(err.Error())
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
