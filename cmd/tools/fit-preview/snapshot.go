// cmd/tools/fit-preview/snapshot.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"teamfit-workers/internal/common/validation"
	"teamfit-workers/internal/models"
)

// loadSnapshot reads a snapshot from path, or stdin when path is "-".
func loadSnapshot(path string, stdin io.Reader) (models.Snapshot, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot JSON: %w", err)
	}

	if snap, err = snap.Normalized(); err != nil {
		return models.Snapshot{}, fmt.Errorf("invalid snapshot: %w", err)
	}

	result := validation.ValidateStruct(snap.Candidate)
	for _, slot := range snap.Slots {
		result.Merge(validation.ValidateStruct(slot))
	}
	if !result.Valid {
		return models.Snapshot{}, fmt.Errorf("invalid snapshot: %s", result.Summary())
	}
	return snap, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
