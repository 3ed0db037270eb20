// Package errors turns modkit failures into messages that name a category and
// the commands that fix them. The category decides the process exit code.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Category groups failures by who has to act on them.
type Category int

const (
	Argument      Category = iota // bad flags or positional arguments
	Configuration                 // .modkit.yml, MODKIT_* or git identity
	Prerequisite                  // a mod file, repository or link is missing or malformed
	Runtime                       // a write, zip, checkout or push failed
)

var categoryNames = map[Category]string{
	Argument:      "Argument Error",
	Configuration: "Configuration Error",
	Prerequisite:  "Prerequisite Error",
	Runtime:       "Runtime Error",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "Error"
}

// CLIError is a failure reported to the user together with its fixes.
type CLIError struct {
	Category    Category
	Message     string
	Usage       string // command line shown for argument errors
	Remediation []string
	Err         error
}

func (e *CLIError) Error() string {
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// New returns a CLIError of category c.
func New(c Category, message string, remediation ...string) *CLIError {
	return &CLIError{Category: c, Message: message, Remediation: remediation}
}

// Usage returns an argument error that prints the command line below the
// message.
func Usage(message, usage string, remediation ...string) *CLIError {
	e := New(Argument, message, remediation...)
	e.Usage = usage
	return e
}

// Wrap reports err as is under category c. A nil err gives nil.
func Wrap(err error, c Category, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	e := New(c, err.Error(), remediation...)
	e.Err = err
	return e
}

// WrapMessage is Wrap with the message "<prefix>: <err>".
func WrapMessage(err error, c Category, prefix string, remediation ...string) *CLIError {
	e := Wrap(err, c, remediation...)
	if e != nil {
		e.Message = fmt.Sprintf("%s: %v", prefix, err)
	}
	return e
}

// IsCLIError reports whether err's chain holds a CLIError.
func IsCLIError(err error) bool {
	return AsCLIError(err) != nil
}

// AsCLIError returns the first CLIError in err's chain, or nil.
func AsCLIError(err error) *CLIError {
	var cliErr *CLIError
	if stderrors.As(err, &cliErr) {
		return cliErr
	}
	return nil
}
