// Package history records modkit command executions in a YAML file under
// the state directory.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ariel-frischer/modkit/internal/fileutil"
	"gopkg.in/yaml.v3"
)

// FileName is the history file inside the state directory.
const FileName = "history.yaml"

// HistoryEntry is one executed command.
type HistoryEntry struct {
	Timestamp time.Time `yaml:"timestamp"`
	Command   string    `yaml:"command"`
	Mod       string    `yaml:"mod,omitempty"`
	Version   string    `yaml:"version,omitempty"`
	ExitCode  int       `yaml:"exit_code"`
	Duration  string    `yaml:"duration"`
}

// HistoryFile is the on-disk document.
type HistoryFile struct {
	Entries []HistoryEntry `yaml:"entries"`
}

// Path returns the history file path for stateDir.
func Path(stateDir string) string {
	return filepath.Join(stateDir, FileName)
}

// LoadHistory reads the history file. A missing file is an empty history.
func LoadHistory(stateDir string) (*HistoryFile, error) {
	data, err := os.ReadFile(Path(stateDir))
	if errors.Is(err, os.ErrNotExist) {
		return &HistoryFile{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var h HistoryFile
	if err := yaml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", Path(stateDir), err)
	}
	return &h, nil
}

// SaveHistory writes h atomically, creating stateDir if needed.
func SaveHistory(stateDir string, h *HistoryFile) error {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := yaml.Marshal(h)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}
	return fileutil.WriteAtomic(Path(stateDir), data)
}

// ClearHistory removes the history file.
func ClearHistory(stateDir string) error {
	if err := os.Remove(Path(stateDir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Filter returns entries for mod (all when empty), keeping at most the last
// limit entries when limit is positive.
func Filter(entries []HistoryEntry, mod string, limit int) []HistoryEntry {
	var result []HistoryEntry
	for _, e := range entries {
		if mod == "" || e.Mod == mod {
			result = append(result, e)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return result
}
