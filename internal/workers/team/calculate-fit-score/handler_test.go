// internal/workers/team/calculate-fit-score/handler_test.go
package calculatefitscore

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"teamfit-workers/internal/common/config"
	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/models"
	"teamfit-workers/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func setupHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	repo := repository.New(db, nil, config.CacheConfig{}, log)
	return NewHandler(createTestConfig(), repo, nil, log), mock
}

func createTestSlot() *models.PositionSlot {
	return &models.PositionSlot{
		ID:       "slot-1",
		Role:     models.RoleDeveloper,
		MinLevel: 2,
		RequiredSkillLevels: []models.SkillRequirement{
			{SkillName: "React", MinLevel: 3},
			{SkillName: "Node", MinLevel: 2},
		},
		CurrentCount: 0,
		MaxCount:     2,
	}
}

func createTestCandidate() *models.CandidateProfile {
	return &models.CandidateProfile{ID: "cand-1", Level: 3}
}

func tagPtr(raw string) *models.PersonalityTag {
	tag := models.PersonalityTag(raw)
	return &tag
}

var slotColumns = []string{
	"id", "team_id", "role", "role_type", "preferred_personality_tag", "min_level",
	"required_skill_levels", "questions", "current_count", "max_count",
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_InlineData(t *testing.T) {
	owl := models.PersonalityOwl
	tiger := models.PersonalityTiger
	mixedCase := models.PersonalityTag(" Tiger")

	tests := []struct {
		name          string
		candidate     *models.CandidateProfile
		skills        []models.CandidateSkill
		slot          *models.PositionSlot
		expectedScore int
		selectable    bool
		underSkilled  bool
	}{
		{
			name:          "one of two skills met",
			candidate:     createTestCandidate(),
			skills:        []models.CandidateSkill{{SkillName: "react", Level: 4}},
			slot:          createTestSlot(),
			expectedScore: 70,
			selectable:    true,
			underSkilled:  true,
		},
		{
			name:      "no required skills with personality mismatch",
			candidate: &models.CandidateProfile{ID: "cand-2", Level: 3, PersonalityTag: &owl},
			skills:    []models.CandidateSkill{},
			slot: &models.PositionSlot{
				ID: "slot-2", Role: models.RoleDesigner, MinLevel: 4,
				PreferredPersonalityTag: &tiger, MaxCount: 1,
			},
			expectedScore: 40,
			selectable:    false,
		},
		{
			name:      "inline tag matches regardless of case",
			candidate: &models.CandidateProfile{ID: "cand-4", Level: 3, PersonalityTag: &mixedCase},
			skills:    []models.CandidateSkill{},
			slot: &models.PositionSlot{
				ID: "slot-3", Role: models.RoleLeader, MinLevel: 2,
				PreferredPersonalityTag: &tiger, MaxCount: 1,
			},
			expectedScore: 100,
			selectable:    true,
		},
		{
			name:      "everything met",
			candidate: &models.CandidateProfile{ID: "cand-3", Level: 5},
			skills: []models.CandidateSkill{
				{SkillName: "React", Level: 5},
				{SkillName: "NODE", Level: 2},
			},
			slot:          createTestSlot(),
			expectedScore: 100,
			selectable:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mock := setupHandler(t)

			output, err := handler.Execute(context.Background(), &Input{
				Candidate: tt.candidate,
				Skills:    tt.skills,
				Slot:      tt.slot,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedScore, output.FitScore)
			assert.Equal(t, tt.expectedScore, output.FitResult.Score)
			assert.Equal(t, tt.selectable, output.Selectable)
			assert.Equal(t, tt.underSkilled, output.UnderSkilled)
			assert.True(t, output.Available)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_LoadsFromDatabase(t *testing.T) {
	handler, mock := setupHandler(t)

	mock.ExpectQuery(`FROM users`).
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "level", "personality_tag"}).AddRow("cand-1", 3, "owl"))
	mock.ExpectQuery(`FROM user_skills`).
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"skill_name", "level"}).AddRow("React", 4))
	mock.ExpectQuery(`FROM team_position_slots`).
		WithArgs("slot-1").
		WillReturnRows(sqlmock.NewRows(slotColumns).AddRow(
			"slot-1", "team-1", "developer", "frontend", nil, 2,
			[]byte(`[{"skillName":"React","minLevel":3},{"skillName":"Node","minLevel":2}]`),
			[]byte(`[]`), 2, 2,
		))

	output, err := handler.Execute(context.Background(), &Input{CandidateID: "cand-1", SlotID: "slot-1"})

	require.NoError(t, err)
	assert.Equal(t, 70, output.FitScore)
	assert.False(t, output.Available)
	assert.True(t, output.Selectable)
	require.Len(t, output.FitResult.Details, 2)
	assert.False(t, output.FitResult.Details[1].Met)
	assert.Nil(t, output.FitResult.Details[1].CandidateLevel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_InlineCandidateLoadsSkills(t *testing.T) {
	handler, mock := setupHandler(t)

	mock.ExpectQuery(`FROM user_skills`).
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"skill_name", "level"}).
			AddRow("React", 3).
			AddRow("Node", 2))

	output, err := handler.Execute(context.Background(), &Input{
		Candidate: createTestCandidate(),
		Slot:      createTestSlot(),
	})

	require.NoError(t, err)
	assert.Equal(t, 100, output.FitScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	tests := []struct {
		name         string
		input        *Input
		setupMock    func(mock sqlmock.Sqlmock)
		expectedErr  error
		expectedCode apperrors.ErrorCode
	}{
		{
			name:         "missing candidate",
			input:        &Input{SlotID: "slot-1"},
			expectedErr:  ErrInvalidInput,
			expectedCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:         "missing slot",
			input:        &Input{CandidateID: "cand-1"},
			expectedErr:  ErrInvalidInput,
			expectedCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "inline slot without id",
			input: &Input{
				Candidate: createTestCandidate(),
				Skills:    []models.CandidateSkill{},
				Slot:      &models.PositionSlot{Role: models.RoleOther},
			},
			expectedErr:  ErrInvalidInput,
			expectedCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name: "unknown inline personality tag",
			input: &Input{
				Candidate: &models.CandidateProfile{ID: "cand-1", Level: 3, PersonalityTag: tagPtr("lion")},
				Skills:    []models.CandidateSkill{},
				Slot:      createTestSlot(),
			},
			expectedErr:  ErrInvalidInput,
			expectedCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:  "unknown candidate",
			input: &Input{CandidateID: "ghost", SlotID: "slot-1"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
			},
			expectedErr:  ErrCandidateNotFound,
			expectedCode: apperrors.ErrCodeCandidateNotFound,
		},
		{
			name:  "unknown slot",
			input: &Input{Candidate: createTestCandidate(), Skills: []models.CandidateSkill{}, SlotID: "missing"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM team_position_slots`).WithArgs("missing").WillReturnRows(sqlmock.NewRows(slotColumns))
			},
			expectedErr:  ErrSlotNotFound,
			expectedCode: apperrors.ErrCodeSlotNotFound,
		},
		{
			name:  "database down",
			input: &Input{CandidateID: "cand-1", SlotID: "slot-1"},
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM users`).WithArgs("cand-1").WillReturnError(sql.ErrConnDone)
			},
			expectedErr:  ErrSnapshotLoadFailed,
			expectedCode: apperrors.ErrCodeSnapshotLoadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, mock := setupHandler(t)
			if tt.setupMock != nil {
				tt.setupMock(mock)
			}

			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, tt.expectedCode, toStandardError(err, tt.input).Code)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestToStandardError_Retryable(t *testing.T) {
	input := &Input{CandidateID: "cand-1"}

	assert.True(t, toStandardError(ErrSnapshotLoadFailed, input).Retryable)
	assert.False(t, toStandardError(ErrInvalidInput, input).Retryable)
	assert.Equal(t, apperrors.ErrCodeFitScoreFailed, toStandardError(assert.AnError, input).Code)
}
