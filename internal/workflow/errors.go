package workflow

import (
	"errors"
	"fmt"
	"strings"
)

// ErrAborted is returned when the user declines a confirmation.
var ErrAborted = errors.New("aborted")

// StepError reports the step of a multi-step command that failed and the
// steps that had completed before it. Completed steps are not rolled back.
type StepError struct {
	Step      string   // The step that failed
	Completed []string // Steps that finished, in order
	Err       error    // Underlying error
}

// Error returns the failed step, its cause and what had already been done.
func (e *StepError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Step, e.Err)
	if len(e.Completed) > 0 {
		msg += fmt.Sprintf(" (completed: %s)", strings.Join(e.Completed, ", "))
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As compatibility
func (e *StepError) Unwrap() error {
	return e.Err
}

// steps runs named steps in order and turns the first failure into a
// StepError.
type steps struct {
	completed []string
}

func (s *steps) run(name string, fn func() error) error {
	if err := fn(); err != nil {
		return &StepError{
			Step:      name,
			Completed: append([]string(nil), s.completed...),
			Err:       err,
		}
	}
	s.completed = append(s.completed, name)
	return nil
}

// Completed returns the names of the steps that ran successfully.
func (s *steps) Completed() []string {
	return append([]string(nil), s.completed...)
}
