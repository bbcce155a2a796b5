// internal/engine/level/level_test.go
package level

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_BandBoundaries(t *testing.T) {
	tests := []struct {
		score    float64
		expected int
	}{
		{0, 1},
		{10, 1},
		{19, 1},
		{19.9, 1},
		{20, 2},
		{39, 2},
		{40, 3},
		{59, 3},
		{60, 4},
		{79, 4},
		{80, 5},
		{100, 5},
	}

	for _, tt := range tests {
		info := Classify(tt.score)
		assert.Equal(t, tt.expected, info.Level, "score %v", tt.score)
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := Classify(0).Level
	for s := 0.0; s <= 100; s += 0.5 {
		current := Classify(s).Level
		assert.GreaterOrEqual(t, current, prev, "score %v", s)
		prev = current
	}
}

func TestClassify_OutOfDomain(t *testing.T) {
	assert.Equal(t, 1, Classify(-5).Level)
	assert.Equal(t, 5, Classify(150).Level)
	assert.Equal(t, 1, Classify(math.NaN()).Level)

	assert.False(t, InDomain(-0.1))
	assert.False(t, InDomain(100.1))
	assert.True(t, InDomain(0))
	assert.True(t, InDomain(100))
}

func TestClassify_ReturnsBandMetadata(t *testing.T) {
	info := Classify(45)

	assert.Equal(t, 3, info.Level)
	assert.Equal(t, "Intermediate", info.Name)
	assert.NotEmpty(t, info.Description)
	assert.Equal(t, 40, info.MinScore)
	assert.Equal(t, 59, info.MaxScore)
	assert.True(t, info.Contains(45))
	assert.True(t, info.Contains(59.5))
	assert.False(t, info.Contains(60))
}

func TestThresholdFor(t *testing.T) {
	for lvl := MinLevel; lvl <= MaxLevel; lvl++ {
		info := ThresholdFor(lvl)
		assert.Equal(t, lvl, info.Level)
		assert.Equal(t, lvl, Classify(float64(info.MinScore)).Level)
		assert.Equal(t, lvl, Classify(float64(info.MaxScore)).Level)
	}
}

func TestThresholdFor_FallsBackToLevelOne(t *testing.T) {
	for _, lvl := range []int{-1, 0, 6, 99} {
		info := ThresholdFor(lvl)
		assert.Equal(t, 1, info.Level, "level %d", lvl)
		assert.Equal(t, 0, info.MinScore)
		assert.Equal(t, 19, info.MaxScore)
	}
}

func TestLevels_ContiguousAndCopied(t *testing.T) {
	levels := Levels()
	require.Len(t, levels, 5)

	assert.Equal(t, 0, levels[0].MinScore)
	assert.Equal(t, 100, levels[len(levels)-1].MaxScore)
	for i := 1; i < len(levels); i++ {
		assert.Equal(t, levels[i-1].MaxScore+1, levels[i].MinScore)
	}

	levels[0].Name = "changed"
	assert.Equal(t, "Beginner", ThresholdFor(1).Name)
}
