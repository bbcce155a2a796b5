package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	SlotID string `json:"slotId" validate:"required"`
	Level  int    `json:"level" validate:"min=1,max=5"`
}

func TestValidateStruct(t *testing.T) {
	result := ValidateStruct(testPayload{SlotID: "s1", Level: 3})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	result = ValidateStruct(testPayload{Level: 9})
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "slotId", result.Errors[0].Field)
	assert.Equal(t, "REQUIRED", result.Errors[0].Code)
	assert.Equal(t, "level", result.Errors[1].Field)
	assert.Equal(t, "must be at most 5", result.Errors[1].Message)
}

func TestValidateDocument(t *testing.T) {
	schema := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"q1": map[string]interface{}{"type": "string", "minLength": 1},
		},
		"required":             []interface{}{"q1"},
		"additionalProperties": false,
	}

	result, err := ValidateDocument(schema, map[string]interface{}{"q1": "answer"})
	require.NoError(t, err)
	assert.True(t, result.Valid)

	result, err = ValidateDocument(schema, map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "q1", result.Errors[0].Field)
	assert.Equal(t, "REQUIRED", result.Errors[0].Code)

	result, err = ValidateDocument(schema, map[string]interface{}{"q1": "x", "extra": "y"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
}

func TestValidationResult_MergeAndSummary(t *testing.T) {
	result := Valid()
	other := Valid()
	other.Add("introduction", "BLANK", "must not be blank")

	result.Merge(other)
	result.Merge(nil)

	assert.False(t, result.Valid)
	assert.Equal(t, "introduction: must not be blank", result.Summary())
}
