package config

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes for categorization.
const (
	ErrCodeConfigNotFound  = "CONFIG_NOT_FOUND"
	ErrCodeConfigParse     = "CONFIG_PARSE"
	ErrCodeConfigInvalid   = "CONFIG_INVALID"
	ErrCodeScheduleInvalid = "SCHEDULE_INVALID"
	ErrCodeEnvNotSet       = "ENV_NOT_SET"
)

// UserError represents a user-friendly error with actionable suggestions.
type UserError struct {
	Code       string // Error code for categorization (e.g., "CONFIG_NOT_FOUND")
	Message    string // User-friendly error message
	Context    string // File path, section, or other location context
	Suggestion string // Actionable suggestion to fix the error
	Underlying error  // Wrapped error for error chain
}

// Error returns the formatted error message.
func (e *UserError) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)

	if e.Context != "" {
		fmt.Fprintf(&b, " (at %s)", e.Context)
	}

	return b.String()
}

// Unwrap returns the underlying error for error chain support.
func (e *UserError) Unwrap() error {
	return e.Underlying
}

// Is supports errors.Is() for comparing error codes.
func (e *UserError) Is(target error) bool {
	if t, ok := target.(*UserError); ok {
		return e.Code == t.Code
	}
	return false
}

// Format returns a fully formatted error with all details.
func (e *UserError) Format() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s] %s", e.Code, e.Message)

	if e.Context != "" {
		fmt.Fprintf(&b, "\n  Location: %s", e.Context)
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n  Suggestion: %s", e.Suggestion)
	}

	return b.String()
}

// NewConfigNotFoundError creates an error for a missing configuration file.
func NewConfigNotFoundError(path string) *UserError {
	return &UserError{
		Code:       ErrCodeConfigNotFound,
		Message:    fmt.Sprintf("configuration file not found: %s", path),
		Context:    path,
		Suggestion: "Create a declarr.yaml, or pass the path to an existing one.",
	}
}

// NewConfigInvalidError creates an error for a structurally invalid configuration.
func NewConfigInvalidError(message, context string) *UserError {
	return &UserError{
		Code:    ErrCodeConfigInvalid,
		Message: message,
		Context: context,
	}
}

// NewScheduleInvalidError creates an error for an invalid cron expression.
func NewScheduleInvalidError(expr string, err error) *UserError {
	return &UserError{
		Code:       ErrCodeScheduleInvalid,
		Message:    fmt.Sprintf("invalid update_schedule %q", expr),
		Context:    "declarr.update_schedule",
		Suggestion: "Use a standard five-field cron expression, e.g. '0 3 * * *' for 03:00 every day.",
		Underlying: err,
	}
}

// NewEnvNotSetError creates an error for a ${VAR} reference with no value.
func NewEnvNotSetError(name, context string) *UserError {
	return &UserError{
		Code:       ErrCodeEnvNotSet,
		Message:    fmt.Sprintf("environment variable %s is not set", name),
		Context:    context,
		Suggestion: fmt.Sprintf("Export %s, add it to a .env file, or replace ${%s} with a literal value.", name, name),
	}
}

// IsUserError checks if an error is a UserError with a specific code.
func IsUserError(err error, code string) bool {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue.Code == code
	}
	return false
}

// GetUserError extracts a UserError from an error chain, if present.
func GetUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

// NewYAMLParseError translates technical YAML errors into user-friendly messages.
func NewYAMLParseError(path string, err error) *UserError {
	errStr := err.Error()
	var message, suggestion string

	switch {
	case strings.Contains(errStr, "cannot unmarshal !!seq into map"):
		message = "expected an object but found a list"
		suggestion = `Instances are named, not listed.

Correct format:
  sonarr:
    instances:
      main:
        host: http://sonarr.local:8989

Incorrect format:
  sonarr:
    instances:
      - main`

	case strings.Contains(errStr, "cannot unmarshal !!str into"):
		message = "unexpected string value"
		suggestion = "Check that nested values are properly structured with correct indentation."

	case strings.Contains(errStr, "did not find expected key"):
		message = "missing required field or incorrect indentation"
		suggestion = "YAML is sensitive to indentation. Use 2 spaces (not tabs) for each level."

	case strings.Contains(errStr, "mapping values are not allowed"):
		message = "invalid YAML structure"
		suggestion = "Check for missing colons after keys, or incorrect indentation."

	case strings.Contains(errStr, "found character that cannot start"):
		message = "invalid character in YAML"
		suggestion = "Quote string values that contain special characters like ':', '#', or '{'."

	case strings.Contains(errStr, "field") && strings.Contains(errStr, "not found"):
		message = "unknown configuration field"
		suggestion = "Remove the unknown field, or check its spelling against the documented settings."

	default:
		message = "invalid YAML syntax"
		suggestion = "Check your YAML syntax. Common issues: incorrect indentation, missing colons, or unquoted special characters."
	}

	// Extract line number if present
	context := path
	if strings.Contains(errStr, "line ") {
		parts := strings.Split(errStr, "line ")
		if len(parts) > 1 {
			lineInfo := strings.Split(parts[1], ":")[0]
			context = fmt.Sprintf("%s (line %s)", path, lineInfo)
		}
	}

	return &UserError{
		Code:       ErrCodeConfigParse,
		Message:    message,
		Context:    context,
		Suggestion: suggestion,
		Underlying: err,
	}
}
