// internal/workers/data-access/query-postgresql/handler.go
package querypostgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"teamfit-workers/internal/common/camunda"
	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/observability"
	"teamfit-workers/internal/models"
	"teamfit-workers/internal/repository"
	"teamfit-workers/internal/workers/data-access/query-postgresql/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "query-postgresql"
)

var (
	ErrInvalidInput         = errors.New("INVALID_INPUT")
	ErrQueryExecutionFailed = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout         = errors.New("QUERY_TIMEOUT")
	ErrInvalidQueryType     = errors.New("INVALID_QUERY_TYPE")
	ErrNotFound             = errors.New("NOT_FOUND")
)

type Handler struct {
	config    *Config
	deps      queries.Deps
	responder *camunda.JobResponder
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, reader queries.Reader, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		deps:      queries.Deps{DB: db, Reader: reader},
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
	if input == nil {
		return nil, fmt.Errorf("%w: input cannot be nil", ErrInvalidInput)
	}

	queryType := models.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQueryType, input.QueryType)
	}

	params := make(map[string]interface{})
	if input.CandidateID != "" {
		params["candidateId"] = input.CandidateID
	}
	if input.TeamID != "" {
		params["teamId"] = input.TeamID
	}
	if input.SlotID != "" {
		params["slotId"] = input.SlotID
	}
	if input.Filters != nil {
		params["filters"] = input.Filters
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.deps, queryType, params)
	switch {
	case err == nil:
	case errors.Is(err, queries.ErrMissingParam):
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %s", ErrQueryTimeout, queryType)
	default:
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}

	h.logger.Debug("query executed", map[string]interface{}{
		"queryType":     queryType,
		"rowCount":      rowCount,
		"executionTime": execTime,
	})

	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
}

func toStandardError(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrInvalidQueryType):
		return apperrors.NewInvalidQueryTypeError(input.QueryType)
	case errors.Is(err, ErrQueryTimeout):
		return apperrors.NewQueryTimeoutError(input.QueryType)
	case errors.Is(err, ErrNotFound):
		if models.QueryType(input.QueryType) == models.QueryTypeSlotDetails {
			return apperrors.NewSlotNotFoundError(input.SlotID)
		}
		return apperrors.NewCandidateNotFoundError(input.CandidateID)
	default:
		return apperrors.NewQueryExecutionFailedError(input.QueryType, err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
