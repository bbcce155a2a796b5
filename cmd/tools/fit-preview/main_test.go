// cmd/tools/fit-preview/main_test.go
package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"teamfit-workers/internal/engine/application"
	"teamfit-workers/internal/engine/level"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSnapshot = `{
  "candidate": {"id": "cand-1", "level": 3},
  "skills": [{"skillName": "React", "level": 4}, {"skillName": "Go", "level": 2}],
  "slots": [
    {"id": "frontend", "role": "developer", "minLevel": 2, "maxCount": 2,
     "requiredSkillLevels": [{"skillName": "React", "minLevel": 3}, {"skillName": "CSS", "minLevel": 2}]},
    {"id": "backend", "role": "developer", "minLevel": 2, "maxCount": 1,
     "requiredSkillLevels": [{"skillName": "go", "minLevel": 2}]},
    {"id": "full", "role": "designer", "currentCount": 1, "maxCount": 1},
    {"id": "senior", "role": "leader", "minLevel": 4, "maxCount": 1}
  ]
}`

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnnotate(t *testing.T) {
	out, err := execute(t, "", "annotate", "--snapshot", writeSnapshot(t, testSnapshot))
	require.NoError(t, err)

	var options []application.SlotOption
	require.NoError(t, json.Unmarshal([]byte(out), &options))
	require.Len(t, options, 4)

	ids := make([]string, 0, len(options))
	for _, o := range options {
		ids = append(ids, o.Slot.ID)
	}
	assert.Equal(t, []string{"backend", "frontend", "senior", "full"}, ids)

	assert.Equal(t, 100, options[0].Fit.Score)
	assert.Equal(t, 70, options[1].Fit.Score)
	assert.True(t, options[1].UnderSkilled)
	assert.Equal(t, 60, options[2].Fit.Score)
	assert.False(t, options[2].Selectable)
	assert.Equal(t, "Senior", options[2].MinLevel.Name)
	assert.False(t, options[3].Available)
}

func TestRank(t *testing.T) {
	out, err := execute(t, testSnapshot, "rank", "--snapshot", "-")
	require.NoError(t, err)

	var result rankOutput
	require.NoError(t, json.Unmarshal([]byte(out), &result))

	ids := make([]string, 0, len(result.Ranked))
	for _, r := range result.Ranked {
		ids = append(ids, r.SlotID)
	}
	assert.Equal(t, []string{"backend", "frontend", "senior"}, ids)
	require.NotNil(t, result.Suggested)
	assert.Equal(t, "backend", *result.Suggested)
}

func TestClassify(t *testing.T) {
	out, err := execute(t, "", "classify", "19", "20", "79.5", "150")
	require.NoError(t, err)

	var result []classification
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result, 4)
	assert.Equal(t, 1, result[0].Level.Level)
	assert.Equal(t, 2, result[1].Level.Level)
	assert.Equal(t, 4, result[2].Level.Level)
	assert.Equal(t, 5, result[3].Level.Level)
	assert.False(t, result[3].InDomain)
}

func TestClassify_Table(t *testing.T) {
	out, err := execute(t, "", "classify")
	require.NoError(t, err)

	var bands []level.LevelInfo
	require.NoError(t, json.Unmarshal([]byte(out), &bands))
	assert.Equal(t, level.Levels(), bands)
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad score", args: []string{"classify", "high"}},
		{name: "missing file", args: []string{"annotate", "--snapshot", filepath.Join(t.TempDir(), "none.json")}},
		{name: "malformed json", args: []string{"rank", "--snapshot", writeSnapshot(t, "{")}},
		{name: "invalid level", args: []string{"annotate", "--snapshot", writeSnapshot(t, `{"candidate":{"id":"c","level":9},"slots":[]}`)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			assert.Error(t, err)
		})
	}
}
