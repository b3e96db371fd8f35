// Package paramstore persists the user-tunable parameters between restarts
// as a small JSON file and migrates legacy key names to their canonical
// forms on load.
package paramstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"spotwatch/internal/coordinator"
)

// legacyKeys maps retired parameter key names to their canonical
// replacements. A legacy key is renamed only when the canonical key is
// absent, so the migration is idempotent and never clobbers newer data.
var legacyKeys = map[string]string{
	"extra_fees":                "extra_fee_cents",
	"custom_window_lookahead":   "custom_window_lookahead_hours",
	"cheapest_window_lookahead": "cheapest_window_lookahead_hours",
}

// Store reads and writes the parameter file.
type Store struct {
	path string
}

// New creates a Store for the given file path.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads persisted parameters. The second return value reports whether
// the file existed; a missing file is not an error.
func (s *Store) Load() (coordinator.Params, bool, error) {
	var params coordinator.Params
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return params, false, nil
		}
		return params, false, fmt.Errorf("read params file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return params, false, fmt.Errorf("parse params file %s: %w", s.path, err)
	}
	migrateLegacyKeys(raw)

	migrated, err := json.Marshal(raw)
	if err != nil {
		return params, false, fmt.Errorf("encode migrated params: %w", err)
	}
	if err := json.Unmarshal(migrated, &params); err != nil {
		return params, false, fmt.Errorf("parse params file %s: %w", s.path, err)
	}
	return params, true, nil
}

// Save writes the parameters atomically (temp file plus rename) so a crash
// mid-write never leaves a truncated file behind.
func (s *Store) Save(params coordinator.Params) error {
	data, err := json.MarshalIndent(params, "", "  ")
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create params dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".params-*")
	if err != nil {
		return fmt.Errorf("create temp params file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write params file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close params file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("install params file: %w", err)
	}
	return nil
}

func migrateLegacyKeys(raw map[string]json.RawMessage) {
	for legacy, canonical := range legacyKeys {
		value, ok := raw[legacy]
		if !ok {
			continue
		}
		if _, exists := raw[canonical]; !exists {
			raw[canonical] = value
		}
		delete(raw, legacy)
	}
}
