package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"spendscope/pkg/contracts/domain"
)

// snapshotDocument is the JSON export envelope: the snapshot plus the
// derived insights, so a consumer gets the whole analysis from one file.
type snapshotDocument struct {
	Snapshot *domain.AggregateSnapshot `json:"snapshot"`
	Insights []Insight                 `json:"insights"`
}

// WriteSnapshotJSON writes the snapshot document to path, creating
// parent directories as needed.
func WriteSnapshotJSON(path string, snapshot *domain.AggregateSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	doc := snapshotDocument{
		Snapshot: snapshot,
		Insights: BuildInsights(snapshot),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}
