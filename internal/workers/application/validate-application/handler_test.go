// internal/workers/application/validate-application/handler_test.go
package validateapplication

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "teamfit-workers/internal/common/errors"
	"teamfit-workers/internal/common/logger"
	"teamfit-workers/internal/models"
	"teamfit-workers/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSource struct {
	CandidateProfileFunc func(ctx context.Context, candidateID string) (models.CandidateProfile, error)
	PositionSlotFunc     func(ctx context.Context, slotID string) (models.PositionSlot, error)
}

func (m *MockSource) CandidateProfile(ctx context.Context, candidateID string) (models.CandidateProfile, error) {
	return m.CandidateProfileFunc(ctx, candidateID)
}

func (m *MockSource) PositionSlot(ctx context.Context, slotID string) (models.PositionSlot, error) {
	return m.PositionSlotFunc(ctx, slotID)
}

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func createTestHandler(t *testing.T, source Source) *Handler {
	return NewHandler(createTestConfig(), source, nil, logger.NewTestLogger(t))
}

func createTestSlot() models.PositionSlot {
	return models.PositionSlot{
		ID:       "frontend",
		Role:     models.RoleDeveloper,
		MinLevel: 2,
		Questions: []models.Question{
			{ID: "q1", Text: "Why this team?", Required: true},
			{ID: "q2", Text: "Anything else?"},
		},
		MaxCount: 2,
	}
}

func createTestCandidate() models.CandidateProfile {
	return models.CandidateProfile{ID: "cand-1", Level: 3}
}

func createTestDraft(slotID string) models.ApplicationDraft {
	return models.ApplicationDraft{
		SelectedSlotID:   &slotID,
		IntroductionText: "I build React apps.",
		Answers:          map[string]string{"q1": "Great mission"},
	}
}

func errorFields(output *Output) []string {
	fields := make([]string, 0, len(output.ValidationErrors))
	for _, e := range output.ValidationErrors {
		fields = append(fields, e.Field)
	}
	return fields
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ValidDraft(t *testing.T) {
	handler := createTestHandler(t, &MockSource{})
	candidate := createTestCandidate()
	slot := createTestSlot()

	output, err := handler.Execute(context.Background(), &Input{
		Candidate: &candidate,
		Slot:      &slot,
		Draft:     createTestDraft("frontend"),
	})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
	assert.Empty(t, output.Reason)
	assert.Empty(t, output.ValidationErrors)
	assert.Empty(t, output.MissingAnswers)
	require.NotNil(t, output.Payload)
	assert.Equal(t, "frontend", output.Payload.SlotID)
	assert.Equal(t, models.RoleDeveloper, output.Payload.Role)
	assert.Equal(t, "I build React apps.", output.Payload.Introduction)
	assert.Equal(t, map[string]string{"q1": "Great mission"}, output.Payload.Answers)
}

func TestHandler_Execute_InvalidDrafts(t *testing.T) {
	tests := []struct {
		name           string
		modify         func(slot *models.PositionSlot, draft *models.ApplicationDraft)
		expectedReason string
		expectedFields []string
		missing        []string
	}{
		{
			name: "blank introduction and required answer",
			modify: func(_ *models.PositionSlot, draft *models.ApplicationDraft) {
				draft.IntroductionText = "   "
				draft.Answers["q1"] = "  "
			},
			expectedReason: ReasonIncomplete,
			expectedFields: []string{"draft.introductionText", "draft.answers.q1"},
			missing:        []string{"q1"},
		},
		{
			name: "required answer absent",
			modify: func(_ *models.PositionSlot, draft *models.ApplicationDraft) {
				draft.Answers = map[string]string{"q2": "optional only"}
			},
			expectedReason: ReasonIncomplete,
			expectedFields: []string{"draft.answers.q1"},
			missing:        []string{"q1"},
		},
		{
			name: "answer to unknown question",
			modify: func(_ *models.PositionSlot, draft *models.ApplicationDraft) {
				draft.Answers["q9"] = "stray"
			},
			expectedReason: ReasonInvalid,
			expectedFields: []string{"draft.answers.q9"},
		},
		{
			name: "slot is full",
			modify: func(slot *models.PositionSlot, _ *models.ApplicationDraft) {
				slot.CurrentCount = 2
			},
			expectedReason: ReasonSlotUnavailable,
			expectedFields: []string{"slotId"},
		},
		{
			name: "candidate below minimum level",
			modify: func(slot *models.PositionSlot, _ *models.ApplicationDraft) {
				slot.MinLevel = 5
			},
			expectedReason: ReasonSlotNotSelectable,
			expectedFields: []string{"slotId"},
		},
		{
			name: "draft selects another slot",
			modify: func(_ *models.PositionSlot, draft *models.ApplicationDraft) {
				other := "design"
				draft.SelectedSlotID = &other
			},
			expectedReason: ReasonIncomplete,
			expectedFields: []string{"draft.selectedSlotId"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, &MockSource{})
			candidate := createTestCandidate()
			slot := createTestSlot()
			draft := createTestDraft("frontend")
			tt.modify(&slot, &draft)

			output, err := handler.Execute(context.Background(), &Input{
				Candidate: &candidate,
				Slot:      &slot,
				Draft:     draft,
			})

			require.NoError(t, err)
			assert.False(t, output.IsValid)
			assert.Nil(t, output.Payload)
			assert.Equal(t, tt.expectedReason, output.Reason)
			fields := errorFields(output)
			for _, f := range tt.expectedFields {
				assert.Contains(t, fields, f)
			}
			if tt.missing != nil {
				assert.Equal(t, tt.missing, output.MissingAnswers)
			}
		})
	}
}

func TestHandler_Execute_LoadsBySelection(t *testing.T) {
	source := &MockSource{
		CandidateProfileFunc: func(_ context.Context, candidateID string) (models.CandidateProfile, error) {
			assert.Equal(t, "cand-1", candidateID)
			return createTestCandidate(), nil
		},
		PositionSlotFunc: func(_ context.Context, slotID string) (models.PositionSlot, error) {
			assert.Equal(t, "frontend", slotID)
			return createTestSlot(), nil
		},
	}
	handler := createTestHandler(t, source)

	output, err := handler.Execute(context.Background(), &Input{
		CandidateID: "cand-1",
		Draft:       createTestDraft("frontend"),
	})

	require.NoError(t, err)
	assert.True(t, output.IsValid)
}

func TestAnswerSchema(t *testing.T) {
	schema := AnswerSchema(createTestSlot())

	assert.Equal(t, []interface{}{"q1"}, schema["required"])
	assert.Equal(t, false, schema["additionalProperties"])
	props := schema["properties"].(map[string]interface{})
	assert.Contains(t, props["q1"], "pattern")
	assert.NotContains(t, props["q2"], "pattern")

	empty := AnswerSchema(models.PositionSlot{ID: "x"})
	assert.NotContains(t, empty, "required")
}

// ==========================
// Error Handling Tests
// ==========================

func TestHandler_Execute_Errors(t *testing.T) {
	notFound := &MockSource{
		CandidateProfileFunc: func(context.Context, string) (models.CandidateProfile, error) {
			return createTestCandidate(), nil
		},
		PositionSlotFunc: func(_ context.Context, slotID string) (models.PositionSlot, error) {
			return models.PositionSlot{}, fmt.Errorf("slot %s: %w", slotID, repository.ErrNotFound)
		},
	}
	broken := &MockSource{
		CandidateProfileFunc: func(context.Context, string) (models.CandidateProfile, error) {
			return models.CandidateProfile{}, errors.New("connection refused")
		},
	}

	lion := models.PersonalityTag("lion")
	candidate := createTestCandidate()
	slotWithLion := createTestSlot()
	slotWithLion.PreferredPersonalityTag = &lion

	tests := []struct {
		name         string
		source       Source
		input        *Input
		expectedErr  error
		expectedCode apperrors.ErrorCode
	}{
		{
			name:         "no candidate",
			source:       &MockSource{},
			input:        &Input{Draft: createTestDraft("frontend")},
			expectedErr:  ErrInvalidInput,
			expectedCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:         "no slot anywhere",
			source:       notFound,
			input:        &Input{CandidateID: "cand-1"},
			expectedErr:  ErrInvalidInput,
			expectedCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:         "slot not found",
			source:       notFound,
			input:        &Input{CandidateID: "cand-1", Draft: createTestDraft("gone")},
			expectedErr:  ErrSlotNotFound,
			expectedCode: apperrors.ErrCodeSlotNotFound,
		},
		{
			name:   "unknown inline candidate tag",
			source: &MockSource{},
			input: &Input{
				Candidate: &models.CandidateProfile{ID: "cand-1", Level: 3, PersonalityTag: &lion},
				Draft:     createTestDraft("frontend"),
			},
			expectedErr:  ErrInvalidInput,
			expectedCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:   "unknown inline slot tag",
			source: &MockSource{},
			input: &Input{
				Candidate: &candidate,
				Slot:      &slotWithLion,
				Draft:     createTestDraft("frontend"),
			},
			expectedErr:  ErrInvalidInput,
			expectedCode: apperrors.ErrCodeInvalidInput,
		},
		{
			name:         "database down",
			source:       broken,
			input:        &Input{CandidateID: "cand-1", Draft: createTestDraft("frontend")},
			expectedErr:  ErrSnapshotLoadFailed,
			expectedCode: apperrors.ErrCodeSnapshotLoadFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := createTestHandler(t, tt.source)

			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.expectedErr)
			assert.Equal(t, tt.expectedCode, toStandardError(err, tt.input).Code)
		})
	}
}
