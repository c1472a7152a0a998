package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/EmrahFidan/MissingLink/pkg/models"
)

// loadDataset reads a JSON file mapping column names to value arrays
func loadDataset(path string) (*models.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return models.DatasetFromWire(data)
}

// writeOutput writes v as indented JSON to path, or stdout when path is "-"
func writeOutput(path string, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
