// internal/engine/level/level.go

// Package level maps a 0-100 competency score to one of five level bands.
package level

const (
	MinLevel = 1
	MaxLevel = 5
)

// LevelInfo describes one band. MinScore and MaxScore are inclusive.
type LevelInfo struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MinScore    int    `json:"minScore"`
	MaxScore    int    `json:"maxScore"`
}

// Contains reports whether score falls inside the band, treating the upper
// bound as inclusive at integer resolution.
func (l LevelInfo) Contains(score float64) bool {
	return score >= float64(l.MinScore) && score < float64(l.MaxScore+1)
}

// ordered ascending by MinScore; contiguous over 0-100
var table = [...]LevelInfo{
	{Level: 1, Name: "Beginner", Description: "Learning the fundamentals and building first projects.", MinScore: 0, MaxScore: 19},
	{Level: 2, Name: "Junior", Description: "Contributes to projects with guidance from teammates.", MinScore: 20, MaxScore: 39},
	{Level: 3, Name: "Intermediate", Description: "Delivers features independently within a team.", MinScore: 40, MaxScore: 59},
	{Level: 4, Name: "Senior", Description: "Owns larger parts of a project and mentors others.", MinScore: 60, MaxScore: 79},
	{Level: 5, Name: "Expert", Description: "Leads projects and sets technical direction.", MinScore: 80, MaxScore: 100},
}

// Classify returns the highest band whose lower bound is <= score.
//
// Scores are expected in [0,100]. Out-of-range input is not clamped:
// anything below 0 (or NaN) resolves to level 1 because no band qualifies,
// and anything above 100 resolves to level 5.
func Classify(score float64) LevelInfo {
	for i := len(table) - 1; i >= 0; i-- {
		if float64(table[i].MinScore) <= score {
			return table[i]
		}
	}
	return table[0]
}

// ThresholdFor returns the band for level, or level 1's band when level is outside 1-5.
func ThresholdFor(level int) LevelInfo {
	if level < MinLevel || level > MaxLevel {
		return table[0]
	}
	return table[level-1]
}

// Levels returns a copy of the band table in ascending order.
func Levels() []LevelInfo {
	out := make([]LevelInfo, len(table))
	copy(out, table[:])
	return out
}

// InDomain reports whether score is within the classifier's defined range.
func InDomain(score float64) bool {
	return score >= 0 && score <= 100
}
