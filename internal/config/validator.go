package config

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "detection.poll_interval_ms")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
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

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"DEBUG", "INFO", "WARN", "ERROR"}
}

// Validate checks the Config for invalid values and returns all validation
// errors found. Assist settings are not validated here: they are clamped by
// Settings.Clamp, since user sliders are advisory inputs, not hard contracts.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateDetection()...)
	errors = append(errors, c.validateContent()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

func (c *Config) validateDetection() []ValidationError {
	var errors []ValidationError

	if c.Detection.PollIntervalMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "detection.poll_interval_ms",
			Value:   c.Detection.PollIntervalMs,
			Message: "must be a positive number of milliseconds",
		})
	}

	return errors
}

func (c *Config) validateContent() []ValidationError {
	var errors []ValidationError

	if c.Content.PackFile != "" {
		if _, err := os.Stat(c.Content.PackFile); err != nil {
			errors = append(errors, ValidationError{
				Field:   "content.pack_file",
				Value:   c.Content.PackFile,
				Message: "content pack file does not exist",
			})
		}
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	level := strings.ToUpper(c.Logging.Level)
	if !slices.Contains(ValidLogLevels(), level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
