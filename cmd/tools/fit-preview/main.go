// cmd/tools/fit-preview/main.go

// Package main provides fit-preview, a CLI that runs the fit and level engine
// against a snapshot file without a broker or database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "fit-preview",
	Short:        "Preview slot fit scores and level bands",
	Long:         "fit-preview reads a candidate/team snapshot JSON file and prints annotated slot options, the ranked available slots, or the level band for a score.",
	SilenceUsage: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
