package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ValidationError points at the config file and, when known, the line or
// the key that is wrong.
type ValidationError struct {
	FilePath string
	Line     int
	Column   int
	Field    string // dotted key, e.g. git.remote
	Message  string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%s:%d:%d: %s", e.FilePath, e.Line, e.Column, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s %s", e.FilePath, e.Field, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
	}
}

// yaml.v3 reports syntax errors as "yaml: line 5: column 3: <reason>",
// with the column part optional.
var yamlErrorPos = regexp.MustCompile(`^yaml: line (\d+):(?: column (\d+):)? (.*)$`)

// CheckSyntax parses the YAML file at path before koanf loads it, so a typo
// is reported with its position. A missing or blank file is fine.
func CheckSyntax(path string) error {
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return nil
	case err != nil:
		return &ValidationError{FilePath: path, Message: err.Error()}
	case strings.TrimSpace(string(data)) == "":
		return nil
	}

	var node yaml.Node
	err = yaml.Unmarshal(data, &node)
	if err == nil {
		return nil
	}
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		return &ValidationError{FilePath: path, Message: strings.Join(typeErr.Errors, "; ")}
	}

	verr := &ValidationError{FilePath: path, Message: err.Error()}
	if m := yamlErrorPos.FindStringSubmatch(err.Error()); m != nil {
		verr.Line, _ = strconv.Atoi(m[1])
		verr.Column = 1
		if m[2] != "" {
			verr.Column, _ = strconv.Atoi(m[2])
		}
		verr.Message = m[3]
	}
	return verr
}

// tagMessages renders validator tags as the tail of "<key> <message>".
var tagMessages = map[string]func(param string) string{
	"required": func(string) string { return "is required" },
	"min":      func(p string) string { return "must be at least " + p },
	"max":      func(p string) string { return "must be at most " + p },
	"oneof":    func(p string) string { return "must be one of: " + p },
	"email":    func(string) string { return "must be an email address" },
}

// placeholderRules are the format strings modkit fills in with fmt.
var placeholderRules = []struct {
	field   string
	value   func(*Configuration) string
	min     int
	max     int
	message string
}{
	{"git.commit_message", func(c *Configuration) string { return c.Git.CommitMessage }, 0, 1, "must contain at most one %s placeholder"},
	{"migrations.require_format", func(c *Configuration) string { return c.Migrations.RequireFormat }, 1, 1, "must contain one %s placeholder for the version"},
}

// CheckValues validates the merged configuration. source names where the
// values came from in the returned error.
func CheckValues(cfg *Configuration, source string) error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		return name
	})

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return &ValidationError{FilePath: source, Message: err.Error()}
		}
		first := fieldErrs[0]
		msg := "failed validation: " + first.Tag()
		if render, ok := tagMessages[first.Tag()]; ok {
			msg = render(first.Param())
		}
		// Namespace starts with the struct name: Configuration.git.remote.
		_, key, _ := strings.Cut(first.Namespace(), ".")
		return &ValidationError{FilePath: source, Field: key, Message: msg}
	}

	for _, rule := range placeholderRules {
		n := strings.Count(rule.value(cfg), "%s")
		if n < rule.min || n > rule.max {
			return &ValidationError{FilePath: source, Field: rule.field, Message: rule.message}
		}
	}
	return nil
}
