// cmd/tools/fit-preview/classify.go
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"teamfit-workers/internal/engine/level"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [score...]",
	Short: "Print the level band for each score",
	Long:  "Classifies each score into a level band. With no scores, prints the whole band table.",
	RunE:  runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

type classification struct {
	Score    float64         `json:"score"`
	InDomain bool            `json:"inDomain"`
	Level    level.LevelInfo `json:"level"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return writeJSON(cmd.OutOrStdout(), level.Levels())
	}

	out := make([]classification, 0, len(args))
	for _, arg := range args {
		score, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("invalid score %q: %w", arg, err)
		}
		out = append(out, classification{
			Score:    score,
			InDomain: level.InDomain(score),
			Level:    level.Classify(score),
		})
	}
	return writeJSON(cmd.OutOrStdout(), out)
}
