// internal/repository/repository.go

// Package repository loads candidate and team snapshots from PostgreSQL,
// reading through a Redis cache.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"teamfit-workers/internal/common/config"
	"teamfit-workers/internal/common/database"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/common/metrics"
	"teamfit-workers/internal/models"

	"golang.org/x/sync/errgroup"
)

var ErrNotFound = errors.New("not found")

const (
	profileKeyPrefix = "candidate:profile:"
	skillsKeyPrefix  = "candidate:skills:"
	slotsKeyPrefix   = "team:slots:"
)

const (
	queryCandidateProfile = `
		SELECT id, level, personality_tag
		FROM users
		WHERE id = $1`

	queryCandidateSkills = `
		SELECT skill_name, level
		FROM user_skills
		WHERE user_id = $1 AND verified = true
		ORDER BY created_at, skill_name`

	slotColumns = `
		SELECT id, team_id, role, role_type, preferred_personality_tag, min_level,
		       required_skill_levels, questions, current_count, max_count
		FROM team_position_slots`

	queryTeamSlots = slotColumns + `
		WHERE team_id = $1
		ORDER BY created_at, id`

	querySlot = slotColumns + `
		WHERE id = $1`
)

// Repository is safe for concurrent use.
type Repository struct {
	db     *sql.DB
	cache  *database.RedisClient
	ttl    config.CacheConfig
	logger logger.Logger
}

// New builds a Repository. cache may be nil to always read from the database.
func New(db *sql.DB, cache *database.RedisClient, ttl config.CacheConfig, log logger.Logger) *Repository {
	return &Repository{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "repository"}),
	}
}

func (r *Repository) CandidateProfile(ctx context.Context, candidateID string) (models.CandidateProfile, error) {
	var profile models.CandidateProfile
	key := profileKeyPrefix + candidateID
	if r.cached(ctx, "profile", key, &profile) {
		return profile, nil
	}

	var tag sql.NullString
	err := r.db.QueryRowContext(ctx, queryCandidateProfile, candidateID).
		Scan(&profile.ID, &profile.Level, &tag)
	if errors.Is(err, sql.ErrNoRows) {
		return models.CandidateProfile{}, fmt.Errorf("candidate %s: %w", candidateID, ErrNotFound)
	}
	if err != nil {
		return models.CandidateProfile{}, fmt.Errorf("query candidate profile: %w", err)
	}

	profile.PersonalityTag, err = models.ParsePersonalityTag(tag.String)
	if err != nil {
		r.logger.Warn("ignoring unknown personality tag", map[string]interface{}{
			"candidateId": candidateID,
			"tag":         tag.String,
		})
	}

	r.store(ctx, key, profile, r.ttl.ProfileTTLDuration())
	return profile, nil
}

func (r *Repository) CandidateSkills(ctx context.Context, candidateID string) ([]models.CandidateSkill, error) {
	var skills []models.CandidateSkill
	key := skillsKeyPrefix + candidateID
	if r.cached(ctx, "skills", key, &skills) {
		return skills, nil
	}

	rows, err := r.db.QueryContext(ctx, queryCandidateSkills, candidateID)
	if err != nil {
		return nil, fmt.Errorf("query candidate skills: %w", err)
	}
	defer rows.Close()

	skills = []models.CandidateSkill{}
	for rows.Next() {
		var s models.CandidateSkill
		if err := rows.Scan(&s.SkillName, &s.Level); err != nil {
			return nil, fmt.Errorf("scan candidate skill: %w", err)
		}
		skills = append(skills, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidate skills: %w", err)
	}

	r.store(ctx, key, skills, r.ttl.SkillsTTLDuration())
	return skills, nil
}

func (r *Repository) PositionSlots(ctx context.Context, teamID string) ([]models.PositionSlot, error) {
	var slots []models.PositionSlot
	key := slotsKeyPrefix + teamID
	if r.cached(ctx, "slots", key, &slots) {
		return slots, nil
	}

	rows, err := r.db.QueryContext(ctx, queryTeamSlots, teamID)
	if err != nil {
		return nil, fmt.Errorf("query team slots: %w", err)
	}
	defer rows.Close()

	slots = []models.PositionSlot{}
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team slots: %w", err)
	}

	r.store(ctx, key, slots, r.ttl.SlotsTTLDuration())
	return slots, nil
}

// PositionSlot reads one slot straight from the database; capacity checks
// before submission must not see a stale count.
func (r *Repository) PositionSlot(ctx context.Context, slotID string) (models.PositionSlot, error) {
	slot, err := scanSlot(r.db.QueryRowContext(ctx, querySlot, slotID))
	if errors.Is(err, sql.ErrNoRows) {
		return models.PositionSlot{}, fmt.Errorf("slot %s: %w", slotID, ErrNotFound)
	}
	return slot, err
}

// Snapshot loads profile, skills and slots concurrently.
func (r *Repository) Snapshot(ctx context.Context, candidateID, teamID string) (models.Snapshot, error) {
	var snap models.Snapshot
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		profile, err := r.CandidateProfile(gCtx, candidateID)
		snap.Candidate = profile
		return err
	})
	g.Go(func() error {
		skills, err := r.CandidateSkills(gCtx, candidateID)
		snap.Skills = skills
		return err
	})
	g.Go(func() error {
		slots, err := r.PositionSlots(gCtx, teamID)
		snap.Slots = slots
		return err
	})

	if err := g.Wait(); err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

// InvalidateTeam drops cached slots for teamID.
func (r *Repository) InvalidateTeam(ctx context.Context, teamID string) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Del(ctx, slotsKeyPrefix+teamID)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (models.PositionSlot, error) {
	var (
		slot                 models.PositionSlot
		roleType, preferred  sql.NullString
		requirements, quests []byte
	)
	err := row.Scan(&slot.ID, &slot.TeamID, &slot.Role, &roleType, &preferred, &slot.MinLevel,
		&requirements, &quests, &slot.CurrentCount, &slot.MaxCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return slot, err
		}
		return slot, fmt.Errorf("scan slot: %w", err)
	}

	if roleType.Valid && roleType.String != "" {
		rt := models.RoleType(roleType.String)
		slot.RoleType = &rt
	}
	if slot.PreferredPersonalityTag, err = models.ParsePersonalityTag(preferred.String); err != nil {
		return slot, fmt.Errorf("slot %s: %w", slot.ID, err)
	}

	slot.RequiredSkillLevels = []models.SkillRequirement{}
	if len(requirements) > 0 {
		if err := json.Unmarshal(requirements, &slot.RequiredSkillLevels); err != nil {
			return slot, fmt.Errorf("slot %s required_skill_levels: %w", slot.ID, err)
		}
	}
	slot.Questions = []models.Question{}
	if len(quests) > 0 {
		if err := json.Unmarshal(quests, &slot.Questions); err != nil {
			return slot, fmt.Errorf("slot %s questions: %w", slot.ID, err)
		}
	}
	return slot, nil
}

// cached reports whether dest was filled from the cache. Cache failures are
// logged and treated as a miss.
func (r *Repository) cached(ctx context.Context, entity, key string, dest interface{}) bool {
	if r.cache == nil {
		return false
	}
	err := r.cache.GetJSON(ctx, key, dest)
	switch {
	case err == nil:
		metrics.SnapshotCacheLookups.WithLabelValues(entity, "hit").Inc()
		return true
	case errors.Is(err, database.ErrCacheMiss):
		metrics.SnapshotCacheLookups.WithLabelValues(entity, "miss").Inc()
	default:
		metrics.SnapshotCacheLookups.WithLabelValues(entity, "error").Inc()
		r.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err})
	}
	return false
}

func (r *Repository) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SetJSON(ctx, key, value, ttl); err != nil {
		r.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err})
	}
}
