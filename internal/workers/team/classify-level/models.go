// internal/workers/team/classify-level/models.go
package classifylevel

import "teamfit-workers/internal/engine/level"

// Input takes either a competency score or a level. Score wins when both are set.
type Input struct {
	Score *float64 `json:"score,omitempty"`
	Level *int     `json:"level,omitempty"`
}

type Output struct {
	Level     level.LevelInfo  `json:"level"`
	InDomain  bool             `json:"inDomain"`
	NextLevel *level.LevelInfo `json:"nextLevel,omitempty"`
	// PointsToNext is the score still needed to reach NextLevel.
	PointsToNext *float64 `json:"pointsToNext,omitempty"`
}
