// internal/workers/data-access/query-postgresql/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"teamfit-workers/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
)

// Reader is the cached read side of the snapshot repository.
type Reader interface {
	CandidateProfile(ctx context.Context, candidateID string) (models.CandidateProfile, error)
	CandidateSkills(ctx context.Context, candidateID string) ([]models.CandidateSkill, error)
	PositionSlots(ctx context.Context, teamID string) ([]models.PositionSlot, error)
	PositionSlot(ctx context.Context, slotID string) (models.PositionSlot, error)
}

type Deps struct {
	DB     *sql.DB
	Reader Reader
}

// QueryFunc returns the data and its row count.
type QueryFunc func(ctx context.Context, deps Deps, params map[string]interface{}) (interface{}, int, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeCandidateProfile:      CandidateProfile,
	models.QueryTypeCandidateSkills:       CandidateSkills,
	models.QueryTypeTeamSlots:             TeamSlots,
	models.QueryTypeSlotDetails:           SlotDetails,
	models.QueryTypeCandidateApplications: CandidateApplications,
}

// Execute runs the registered query and reports its wall time in milliseconds.
func Execute(ctx context.Context, deps Deps, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	start := time.Now()
	data, rows, err := fn(ctx, deps, params)
	return data, rows, time.Since(start).Milliseconds(), err
}

func stringParam(params map[string]interface{}, name string) (string, error) {
	v, ok := params[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	return v, nil
}
