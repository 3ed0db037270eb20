package history

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Writer appends entries to the history file and prunes the oldest ones.
type Writer struct {
	// StateDir is the directory containing the history file.
	StateDir string
	// MaxEntries is the maximum number of entries to retain. Zero keeps all.
	MaxEntries int
	// Warn receives non-fatal write failures. Defaults to stderr.
	Warn io.Writer

	mu sync.Mutex
}

// NewWriter creates a new history writer.
func NewWriter(stateDir string, maxEntries int) *Writer {
	return &Writer{
		StateDir:   stateDir,
		MaxEntries: maxEntries,
	}
}

// LogEntry adds a new entry to the history file.
// Failures are reported as warnings and never fail the command.
func (w *Writer) LogEntry(entry HistoryEntry) {
	if err := w.logEntry(entry); err != nil {
		out := w.Warn
		if out == nil {
			out = os.Stderr
		}
		fmt.Fprintf(out, "Warning: failed to log history: %v\n", err)
	}
}

func (w *Writer) logEntry(entry HistoryEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	h, err := LoadHistory(w.StateDir)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	h.Entries = append(h.Entries, entry)
	if w.MaxEntries > 0 && len(h.Entries) > w.MaxEntries {
		h.Entries = h.Entries[len(h.Entries)-w.MaxEntries:]
	}

	if err := SaveHistory(w.StateDir, h); err != nil {
		return fmt.Errorf("saving history: %w", err)
	}
	return nil
}

// LogCommand records one command run against mod.
func (w *Writer) LogCommand(command, mod, version string, exitCode int, duration time.Duration) {
	w.LogEntry(HistoryEntry{
		Timestamp: time.Now(),
		Command:   command,
		Mod:       mod,
		Version:   version,
		ExitCode:  exitCode,
		Duration:  duration.Round(time.Millisecond).String(),
	})
}
