// internal/workers/team/search-position-slots/handler.go
package searchpositionslots

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"teamfit-workers/internal/common/camunda"
	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/observability"
	"teamfit-workers/internal/workers/team/search-position-slots/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	TaskType = "search-position-slots"
)

var (
	ErrInvalidInput                  = errors.New("INVALID_INPUT")
	ErrElasticsearchConnectionFailed = errors.New("ELASTICSEARCH_CONNECTION_FAILED")
	ErrSearchQueryFailed             = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout                 = errors.New("SEARCH_TIMEOUT")
	ErrIndexNotFound                 = errors.New("INDEX_NOT_FOUND")
)

type Handler struct {
	config    *Config
	client    esapi.Transport
	responder *camunda.JobResponder
	logger    logger.Logger
}

func NewHandler(config *Config, client esapi.Transport, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		client:    client,
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
		stdErr := h.toStandardError(err)
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

	sq := h.buildQuery(input)
	result, err := queries.Execute(ctx, h.client, sq)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return nil, ErrSearchTimeout
		case errors.Is(err, queries.ErrUnknownSortBy), errors.Is(err, queries.ErrMissingIndex):
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		case errors.Is(err, queries.ErrIndexNotFound):
			return nil, ErrIndexNotFound
		case errors.Is(err, queries.ErrTransport):
			return nil, fmt.Errorf("%w: %v", ErrElasticsearchConnectionFailed, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
		}
	}

	slots := make([]SlotHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		slots = append(slots, SlotHit{Slot: hit.Document.PositionSlot, Score: hit.Score})
	}

	h.logger.Info("slot search completed", map[string]interface{}{
		"index":     sq.Index,
		"totalHits": result.TotalHits,
		"returned":  len(slots),
		"tookMs":    result.Took,
	})

	return &Output{
		Slots:     slots,
		TotalHits: result.TotalHits,
		MaxScore:  result.MaxScore,
		Took:      result.Took,
	}, nil
}

// buildQuery resolves pagination: a missing size takes the default, an
// oversized one is capped, and a negative offset starts at zero.
func (h *Handler) buildQuery(input *Input) queries.SlotQuery {
	size := input.Pagination.Size
	if size < 1 {
		size = h.config.DefaultPageSize
	}
	if size > h.config.MaxPageSize {
		size = h.config.MaxPageSize
	}
	from := input.Pagination.From
	if from < 0 {
		from = 0
	}

	return queries.SlotQuery{
		Index:          h.config.Index,
		Keywords:       input.Keywords,
		TeamID:         input.TeamID,
		Role:           input.Role,
		RoleType:       input.RoleType,
		Skills:         input.Skills,
		CandidateLevel: input.CandidateLevel,
		OpenOnly:       input.OpenOnly,
		SortBy:         input.SortBy,
		From:           from,
		Size:           size,
	}
}

func (h *Handler) toStandardError(err error) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrIndexNotFound):
		return apperrors.NewIndexNotFoundError(h.config.Index)
	case errors.Is(err, ErrSearchTimeout):
		return apperrors.NewSearchTimeoutError(h.config.Index)
	case errors.Is(err, ErrElasticsearchConnectionFailed):
		return apperrors.NewElasticsearchConnectionFailedError(err)
	default:
		return apperrors.NewSearchQueryFailedError(h.config.Index, err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
