// internal/workers/team/classify-level/handler.go
package classifylevel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"teamfit-workers/internal/common/camunda"
	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/observability"
	"teamfit-workers/internal/engine/level"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "classify-level"
)

var (
	ErrInvalidInput = errors.New("INVALID_INPUT")
)

type Handler struct {
	config    *Config
	responder *camunda.JobResponder
	logger    logger.Logger
}

func NewHandler(config *Config, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
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
		stdErr := apperrors.NewInvalidInputError(err.Error())
		h.responder.Fail(ctx, client, job, stdErr)
		done(stdErr)
		return
	}

	h.responder.Complete(ctx, client, job, output)
	done(nil)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	switch {
	case input.Score != nil:
		return h.classifyScore(*input.Score), nil
	case input.Level != nil:
		if *input.Level < level.MinLevel || *input.Level > level.MaxLevel {
			return nil, fmt.Errorf("%w: level %d outside %d-%d", ErrInvalidInput, *input.Level, level.MinLevel, level.MaxLevel)
		}
		info := level.ThresholdFor(*input.Level)
		return &Output{Level: info, InDomain: true, NextLevel: next(info)}, nil
	default:
		return nil, fmt.Errorf("%w: score or level is required", ErrInvalidInput)
	}
}

func (h *Handler) classifyScore(score float64) *Output {
	info := level.Classify(score)
	output := &Output{
		Level:    info,
		InDomain: level.InDomain(score),
	}
	if !output.InDomain {
		h.logger.Warn("score outside classifier range", map[string]interface{}{
			"score": score,
			"level": info.Level,
		})
	}

	if n := next(info); n != nil {
		output.NextLevel = n
		if output.InDomain {
			points := float64(n.MinScore) - score
			output.PointsToNext = &points
		}
	}

	h.logger.Info("level classified", map[string]interface{}{
		"score": score,
		"level": info.Level,
		"name":  info.Name,
	})
	return output
}

func next(info level.LevelInfo) *level.LevelInfo {
	if info.Level >= level.MaxLevel {
		return nil
	}
	n := level.ThresholdFor(info.Level + 1)
	return &n
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
