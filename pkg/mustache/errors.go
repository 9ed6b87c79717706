// Package mustache provides custom error types for better error handling and reporting.
package mustache

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// SyntaxError reports a malformed template. It is returned by every parse
// entry point and aborts the parse; no partial token tree is produced.
type SyntaxError struct {
	Message  string
	Token    string
	Position int
	Line     int
	Column   int
}

func (e *SyntaxError) Error() string {
	var where string
	if e.Line > 0 && e.Column > 0 {
		where = fmt.Sprintf("line %d, column %d", e.Line, e.Column)
	} else {
		where = fmt.Sprintf("position %d", e.Position)
	}
	if e.Token != "" {
		return fmt.Sprintf("syntax error at %s near '%s': %s", where, e.Token, e.Message)
	}
	return fmt.Sprintf("syntax error at %s: %s", where, e.Message)
}

// NewSyntaxError creates a syntax error for the given offset of template.
// Line and column are derived from the offset.
func NewSyntaxError(message, token, template string, position int) error {
	line, column := lineColumn(template, position)
	return &SyntaxError{
		Message:  message,
		Token:    token,
		Position: position,
		Line:     line,
		Column:   column,
	}
}

// ConfigurationError reports a render that cannot proceed because of how the
// engine was called rather than because of the template or the data.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// RenderError reports a failure while rendering a named tag.
type RenderError struct {
	Name  string
	Cause error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error in '%s': %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("render error in '%s'", e.Name)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// MissingPartialError is returned in strict mode when a partial cannot be
// resolved. Suggestion holds the closest known partial name, if any.
type MissingPartialError struct {
	Name       string
	Suggestion string
}

func (e *MissingPartialError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("partial %q not found (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("partial %q not found", e.Name)
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]interface{}
	Cause     error
}

func (e *ContextError) Error() string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	contextParts := make([]string, 0, len(keys))
	for _, k := range keys {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]interface{}) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsSyntaxError checks if an error is, or wraps, a syntax error
func IsSyntaxError(err error) bool {
	var target *SyntaxError
	return errors.As(err, &target)
}

// IsConfigurationError checks if an error is, or wraps, a configuration error
func IsConfigurationError(err error) bool {
	var target *ConfigurationError
	return errors.As(err, &target)
}

// IsMissingPartialError checks if an error is, or wraps, a missing partial error
func IsMissingPartialError(err error) bool {
	var target *MissingPartialError
	return errors.As(err, &target)
}
