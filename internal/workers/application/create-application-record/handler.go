// internal/workers/application/create-application-record/handler.go
package createapplicationrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"teamfit-workers/internal/common/camunda"
	"teamfit-workers/internal/common/database"
	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/metrics"
	"teamfit-workers/internal/common/observability"
	"teamfit-workers/internal/engine/application"
	"teamfit-workers/internal/engine/fit"
	"teamfit-workers/internal/models"
	"teamfit-workers/internal/repository"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-application-record"
)

var (
	ErrInvalidInput         = errors.New("INVALID_INPUT")
	ErrCandidateNotFound    = errors.New("CANDIDATE_NOT_FOUND")
	ErrSnapshotLoadFailed   = errors.New("SNAPSHOT_LOAD_FAILED")
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateApplication = errors.New("DUPLICATE_APPLICATION")
)

const (
	queryApplicationExists = `
		SELECT EXISTS(
			SELECT 1 FROM team_applications
			WHERE candidate_id = $1 AND slot_id = $2 AND status IN ('pending', 'accepted')
		)`

	insertApplication = `
		INSERT INTO team_applications (
			id, candidate_id, team_id, slot_id, role, role_type,
			introduction, answers, fit_score, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`

	insertAuditLog = `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`
)

type SnapshotLoader interface {
	Snapshot(ctx context.Context, candidateID, teamID string) (models.Snapshot, error)
	PositionSlot(ctx context.Context, slotID string) (models.PositionSlot, error)
	InvalidateTeam(ctx context.Context, teamID string) error
}

type Handler struct {
	config    *Config
	db        *sql.DB
	loader    SnapshotLoader
	responder *camunda.JobResponder
	logger    logger.Logger
}

func NewHandler(config *Config, db *sql.DB, loader SnapshotLoader, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		db:        db,
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
	if input.SlotID == "" {
		return nil, fmt.Errorf("%w: slotId is required", ErrInvalidInput)
	}

	snap, err := h.snapshot(ctx, input)
	if err != nil {
		return nil, err
	}

	rec := &record{
		candidateID: snap.Candidate.ID,
		teamID:      input.TeamID,
		skills:      snap.Skills,
		candidate:   snap.Candidate,
	}
	for _, s := range snap.Slots {
		if s.ID == input.SlotID {
			rec.slot = s
			break
		}
	}
	if rec.teamID == "" {
		rec.teamID = rec.slot.TeamID
	}

	session := application.NewSession(snap.Candidate, snap.Slots)
	if err := session.SelectSlot(input.SlotID); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, application.ErrSlotNotSelectable) {
			return nil, &levelError{candidateLevel: snap.Candidate.Level, minLevel: rec.slot.MinLevel, err: err}
		}
		return nil, err
	}
	if err := session.SetIntroduction(input.Introduction); err != nil {
		return nil, err
	}
	for _, id := range sortedKeys(input.Answers) {
		if err := session.SetAnswer(id, input.Answers[id]); err != nil {
			metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
			return nil, err
		}
	}

	payload, err := session.Submit(ctx, h.persist(rec))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrApplicationIncomplete):
			metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		case errors.Is(err, ErrDuplicateApplication):
			metrics.SubmissionsTotal.WithLabelValues("duplicate").Inc()
		default:
			metrics.SubmissionsTotal.WithLabelValues("failed").Inc()
		}
		return nil, err
	}
	metrics.SubmissionsTotal.WithLabelValues("submitted").Inc()

	h.writeAuditLog(ctx, rec)
	h.invalidateSlots(ctx, rec.teamID)

	h.logger.Info("application record created", map[string]interface{}{
		"applicationId": rec.id,
		"candidateId":   rec.candidateID,
		"teamId":        rec.teamID,
		"slotId":        payload.SlotID,
		"fitScore":      rec.fitScore,
	})

	return &Output{
		ApplicationID:     rec.id,
		ApplicationStatus: models.ApplicationStatusPending,
		FitScore:          rec.fitScore,
		Payload:           payload,
		CreatedAt:         rec.createdAt,
	}, nil
}

type levelError struct {
	candidateLevel int
	minLevel       int
	err            error
}

func (e *levelError) Error() string { return e.err.Error() }
func (e *levelError) Unwrap() error { return e.err }

// record collects what persist writes so the caller can report it.
type record struct {
	candidateID string
	teamID      string
	candidate   models.CandidateProfile
	skills      []models.CandidateSkill
	slot        models.PositionSlot

	id        string
	fitScore  int
	createdAt string
}

// persist returns the submit callback: duplicate check and insert share one transaction.
func (h *Handler) persist(rec *record) application.SubmitFunc {
	return func(ctx context.Context, payload models.ApplicationPayload) error {
		answersJSON, err := json.Marshal(payload.Answers)
		if err != nil {
			return fmt.Errorf("%w: marshal answers: %v", ErrDatabaseInsertFailed, err)
		}

		id := uuid.New().String()
		createdAt := time.Now().UTC().Format(time.RFC3339)
		score := fit.Score(rec.slot, rec.skills, rec.candidate.Level, rec.candidate.PersonalityTag).Score

		var roleType sql.NullString
		if payload.RoleType != nil {
			roleType = sql.NullString{String: string(*payload.RoleType), Valid: true}
		}

		err = database.WithTx(ctx, h.db, func(tx *sql.Tx) error {
			var exists bool
			if err := tx.QueryRowContext(ctx, queryApplicationExists, rec.candidateID, payload.SlotID).Scan(&exists); err != nil {
				return fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
			}
			if exists {
				return fmt.Errorf("%w: candidate %s already applied to slot %s",
					ErrDuplicateApplication, rec.candidateID, payload.SlotID)
			}

			_, err := tx.ExecContext(ctx, insertApplication,
				id,
				rec.candidateID,
				rec.teamID,
				payload.SlotID,
				string(payload.Role),
				roleType,
				payload.Introduction,
				answersJSON,
				score,
				models.ApplicationStatusPending,
				createdAt,
			)
			if err != nil {
				return fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
			}
			return nil
		})
		if err != nil {
			if errors.Is(err, ErrDuplicateApplication) || errors.Is(err, ErrDatabaseInsertFailed) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrDatabaseInsertFailed, err)
		}

		rec.id = id
		rec.fitScore = score
		rec.createdAt = createdAt
		return nil
	}
}

// writeAuditLog is best effort; a failure is logged and the job still completes.
func (h *Handler) writeAuditLog(ctx context.Context, rec *record) {
	details, err := json.Marshal(map[string]interface{}{
		"candidateId": rec.candidateID,
		"teamId":      rec.teamID,
		"slotId":      rec.slot.ID,
		"fitScore":    rec.fitScore,
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{"error": err})
		details = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, insertAuditLog,
		"application_created",
		"team_application",
		rec.id,
		details,
		rec.createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": rec.id,
		})
	}
}

// invalidateSlots drops the team's cached slots so the next read sees the new
// application. Failures only log; the cache entry expires on its own.
func (h *Handler) invalidateSlots(ctx context.Context, teamID string) {
	if teamID == "" {
		return
	}
	if err := h.loader.InvalidateTeam(ctx, teamID); err != nil {
		h.logger.Warn("slot cache invalidation failed", map[string]interface{}{
			"error":  err,
			"teamId": teamID,
		})
	}
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

	// Cached slots may carry a stale head count; re-read the chosen one.
	fresh, err := h.loader.PositionSlot(ctx, input.SlotID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return models.Snapshot{}, fmt.Errorf("%w: %s", application.ErrUnknownSlot, input.SlotID)
	case err != nil:
		return models.Snapshot{}, fmt.Errorf("%w: %v", ErrSnapshotLoadFailed, err)
	}
	slots := make([]models.PositionSlot, len(snap.Slots))
	copy(slots, snap.Slots)
	for i := range slots {
		if slots[i].ID == fresh.ID {
			slots[i] = fresh
		}
	}
	snap.Slots = slots
	return snap, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toStandardError(err error, input *Input) *apperrors.StandardError {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return apperrors.NewInvalidInputError(err.Error())
	case errors.Is(err, ErrCandidateNotFound):
		return apperrors.NewCandidateNotFoundError(input.CandidateID)
	case errors.Is(err, ErrSnapshotLoadFailed):
		return apperrors.NewSnapshotLoadFailedError(err)
	case errors.Is(err, application.ErrUnknownSlot):
		return apperrors.NewSlotNotFoundError(input.SlotID)
	case errors.Is(err, application.ErrSlotUnavailable):
		return apperrors.NewSlotUnavailableError(input.SlotID)
	case errors.Is(err, application.ErrSlotNotSelectable):
		var le *levelError
		if errors.As(err, &le) {
			return apperrors.NewSlotNotSelectableError(input.SlotID, le.candidateLevel, le.minLevel)
		}
		return apperrors.NewSlotNotSelectableError(input.SlotID, 0, 0)
	case errors.Is(err, application.ErrUnknownQuestion):
		return apperrors.NewApplicationValidationFailedError(err.Error())
	case errors.Is(err, application.ErrApplicationIncomplete):
		return apperrors.NewApplicationIncompleteError("introduction or required answers missing")
	case errors.Is(err, ErrDuplicateApplication):
		return apperrors.NewDuplicateApplicationError(input.CandidateID, input.SlotID)
	case errors.Is(err, ErrDatabaseInsertFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	default:
		return apperrors.NewDatabaseInsertFailedError(err)
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
