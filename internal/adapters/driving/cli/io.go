package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kohi-labs/kohi-cli/internal/core/domain"
)

// readRawRecords decodes a JSON file holding an array of raw record
// objects. A single top-level object is accepted and treated as a
// one-element array.
func readRawRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		var single map[string]any
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		records = []map[string]any{single}
	}
	return records, nil
}

// readProductRecords decodes a JSON file into product records.
func readProductRecords(path string) ([]domain.ProductRecord, error) {
	raw, err := readRawRecords(path)
	if err != nil {
		return nil, err
	}
	records := make([]domain.ProductRecord, 0, len(raw))
	for _, fields := range raw {
		records = append(records, domain.RecordFromFields(fields))
	}
	return records, nil
}

// writeJSON writes v as indented JSON to path, or to the command's
// stdout when path is empty.
func writeJSON(cmd *cobra.Command, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if path == "" {
		cmd.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
