package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pezhmanazar/phoenix-app-sub002/internal/logging"
)

// ValidationError represents a single validation failure.
type ValidationError struct {
	Field   string // The config field path (e.g., "storage.backend")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Validate checks the Config for invalid values and returns all errors found.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	if !validURL(c.API.BaseURL) {
		errs = append(errs, ValidationError{
			Field:   "api.base_url",
			Value:   c.API.BaseURL,
			Message: "must be an absolute http(s) URL",
		})
	}
	if strings.TrimSpace(c.API.CompletePath) == "" {
		errs = append(errs, ValidationError{
			Field:   "api.complete_path",
			Value:   c.API.CompletePath,
			Message: "must not be empty",
		})
	}
	if c.API.TimeoutSeconds < 0 {
		errs = append(errs, ValidationError{
			Field:   "api.timeout_seconds",
			Value:   c.API.TimeoutSeconds,
			Message: "must be zero or positive",
		})
	}

	if !slices.Contains(ValidBackends(), c.Storage.Backend) {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Value:   c.Storage.Backend,
			Message: fmt.Sprintf("must be one of %v", ValidBackends()),
		})
	}

	if c.Logging.Level != "" && !logging.IsValidLevel(c.Logging.Level) {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: "must be one of debug, info, warn, error",
		})
	}

	return errs
}
