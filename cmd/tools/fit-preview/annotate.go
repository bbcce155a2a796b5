// cmd/tools/fit-preview/annotate.go
package main

import (
	"github.com/spf13/cobra"

	"teamfit-workers/internal/engine/application"
)

var annotateCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Score every slot in a snapshot",
	Long:  "Prints each slot with its fit result and availability, selectability and under-skill flags, in snapshot order.",
	RunE:  runAnnotate,
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the available slots of a snapshot",
	Long:  "Prints the available slots sorted by fit score, highest first, and the suggested slot id.",
	RunE:  runRank,
}

var snapshotPath string

func init() {
	for _, cmd := range []*cobra.Command{annotateCmd, rankCmd} {
		cmd.Flags().StringVarP(&snapshotPath, "snapshot", "s", "", "Path to snapshot JSON file, or - for stdin (required)")
		if err := cmd.MarkFlagRequired("snapshot"); err != nil {
			panic(err)
		}
		rootCmd.AddCommand(cmd)
	}
}

func runAnnotate(cmd *cobra.Command, _ []string) error {
	snap, err := loadSnapshot(snapshotPath, cmd.InOrStdin())
	if err != nil {
		return err
	}
	options := application.Annotate(snap.Slots, snap.Candidate, snap.Skills)
	return writeJSON(cmd.OutOrStdout(), options)
}

type rankOutput struct {
	Ranked    []rankedSlot `json:"ranked"`
	Suggested *string      `json:"suggested"`
}

type rankedSlot struct {
	SlotID string `json:"slotId"`
	Score  int    `json:"score"`
}

func runRank(cmd *cobra.Command, _ []string) error {
	snap, err := loadSnapshot(snapshotPath, cmd.InOrStdin())
	if err != nil {
		return err
	}

	out := rankOutput{Ranked: []rankedSlot{}}
	byID := map[string]int{}
	for _, opt := range application.Annotate(snap.Slots, snap.Candidate, snap.Skills) {
		byID[opt.Slot.ID] = opt.Fit.Score
	}
	ranked := application.RankedSlots(application.AvailableSlots(snap.Slots), snap.Candidate, snap.Skills)
	for _, slot := range ranked {
		out.Ranked = append(out.Ranked, rankedSlot{SlotID: slot.ID, Score: byID[slot.ID]})
	}
	if s := application.Suggest(snap.Slots, snap.Candidate, snap.Skills); s != nil {
		id := s.ID
		out.Suggested = &id
	}
	return writeJSON(cmd.OutOrStdout(), out)
}
