package pii

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type auditRecord struct {
	Timestamp string            `json:"timestamp"`
	TraceId   string            `json:"trace_id,omitempty"`
	Mappings  map[string]string `json:"mappings"`
}

// SaveMapping persists a query's mapping as a timestamped JSON file for audit.
// Callers gate this on configuration; mappings hold the unmasked values, so
// the directory is expected to be access controlled.
func SaveMapping(dir string, traceId string, m *Mapping) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("creating audit dir: %w", err)
	}

	record := auditRecord{
		Timestamp: time.Now().Format(time.RFC3339),
		TraceId:   traceId,
		Mappings:  m.Placeholders(),
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("mapping-%d.json", time.Now().UnixNano()))
	if err := os.WriteFile(path, data, 0640); err != nil {
		return "", fmt.Errorf("writing audit file: %w", err)
	}
	return path, nil
}
