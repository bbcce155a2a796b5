// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeDatabaseInsertFailed, 3},
		{ErrCodeSnapshotLoadFailed, 3},
		{ErrCodeNotificationSendFailed, 3},
		{ErrCodeQueryTimeout, 2},
		{ErrCodeSearchTimeout, 2},
		{ErrCodeDuplicateApplication, 0},
		{ErrCodeSlotNotSelectable, 0},
		{ErrCodeInternal, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.expected, GetRetryCount(tt.code))
			assert.Equal(t, tt.expected > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewSlotNotSelectableError("slot-1", 2, 4).WithMetadata("slotId", "slot-1")

	bpmnErr := ConvertToBPMNError(stdErr)

	assert.Equal(t, "SLOT_NOT_SELECTABLE", bpmnErr.Code)
	assert.False(t, bpmnErr.Retryable)
	assert.Equal(t, 0, bpmnErr.Retries)
	assert.Equal(t, "SLOT_NOT_SELECTABLE", bpmnErr.ErrorVariables["originalErrorCode"])
	assert.Equal(t, "slot-1", bpmnErr.ErrorVariables["slotId"])

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "SLOT_NOT_SELECTABLE", vars["errorCode"])
	assert.Contains(t, vars["errorDetails"], "minLevel: 4")
}

func TestConvertToBPMNError_RetryableKeepsRetries(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewDatabaseInsertFailedError(fmt.Errorf("connection reset")))

	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)
}

func TestConvertToBPMNError_UnknownCodeFallsBack(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewBusinessRuleError("nope", ""))
	assert.Equal(t, "BUSINESS_RULE_VIOLATION", bpmnErr.Code)
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", NewCandidateNotFoundError("c1"))
	stdErr := Normalize(wrapped)
	assert.Equal(t, ErrCodeCandidateNotFound, stdErr.Code)

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
	assert.False(t, plain.Retryable)
}

func TestAsStandardError(t *testing.T) {
	_, ok := AsStandardError(stderrors.New("x"))
	assert.False(t, ok)

	stdErr, ok := AsStandardError(NewInvalidInputError("bad"))
	require.True(t, ok)
	assert.Equal(t, "StandardError[INVALID_INPUT]: Invalid job input", stdErr.Error())
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "APPLICATION", GetErrorCategory(ErrCodeDuplicateApplication))
	assert.Equal(t, "SCORING", GetErrorCategory(ErrCodeFitScoreFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "OTHER", GetErrorCategory("SOMETHING_ELSE"))
}
