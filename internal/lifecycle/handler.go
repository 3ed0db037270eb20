// Package lifecycle wraps command execution with timing and a completion
// callback. Commands use it to feed the history log without repeating the
// bookkeeping in every RunE.
package lifecycle

import "time"

// Result describes a finished command.
type Result struct {
	// Version is the mod version the command produced or acted on, if any.
	Version  string
	Err      error
	Duration time.Duration
}

// Handler is told when a command finishes.
type Handler interface {
	OnCommandComplete(name string, result Result)
}

// Run executes fn and reports its outcome to h. A nil h is skipped.
// The error from fn is returned unchanged.
func Run(h Handler, name string, fn func() (string, error)) error {
	start := time.Now()
	version, err := fn()
	if h != nil {
		h.OnCommandComplete(name, Result{
			Version:  version,
			Err:      err,
			Duration: time.Since(start),
		})
	}
	return err
}
