package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

var validLogLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate checks the configuration and returns every problem found, joined.
func (c *ServerConfiguration) Validate() error {
	var errs []error

	if strings.TrimSpace(c.BaseDir) == "" {
		errs = append(errs, &ValidationError{Field: "baseDir", Message: "is required"})
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, &ValidationError{Field: "port", Message: fmt.Sprintf("must be between 0 and 65535, got %d", c.Port)})
	}
	if c.LogLevel != "" && !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, &ValidationError{Field: "logLevel", Message: fmt.Sprintf("unknown level %q", c.LogLevel)})
	}
	if c.LogFormat != "" && !strings.EqualFold(c.LogFormat, "text") && !strings.EqualFold(c.LogFormat, "json") {
		errs = append(errs, &ValidationError{Field: "logFormat", Message: fmt.Sprintf("must be text or json, got %q", c.LogFormat)})
	}
	if c.ReadTimeout < 0 {
		errs = append(errs, &ValidationError{Field: "readTimeout", Message: "cannot be negative"})
	}
	if c.WriteTimeout < 0 {
		errs = append(errs, &ValidationError{Field: "writeTimeout", Message: "cannot be negative"})
	}
	if c.MaxLogEntries < 0 {
		errs = append(errs, &ValidationError{Field: "maxLogEntries", Message: "cannot be negative"})
	}

	for i := range c.Mutations {
		if err := c.Mutations[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("mutations[%d]: %w", i, err))
		}
	}

	return errors.Join(errs...)
}

// Validate checks a single mutation entry.
func (m *MutationConfig) Validate() error {
	if !slices.Contains(MutationTypes, m.Type) {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown mutation type %q", m.Type)}
	}

	for _, p := range m.Paths {
		if !doublestar.ValidatePattern(p) {
			return &ValidationError{Field: "paths", Message: fmt.Sprintf("invalid glob %q", p)}
		}
	}

	switch m.Type {
	case MutationHeaders:
		if len(m.Headers) == 0 {
			return &ValidationError{Field: "headers", Message: "at least one header is required"}
		}
	case MutationStatus:
		if !validStatus(m.Status) {
			return &ValidationError{Field: "status", Message: fmt.Sprintf("invalid status code %d", m.Status)}
		}
	case MutationDelay:
		if _, _, err := m.DelayRange(); err != nil {
			return err
		}
	case MutationFault:
		if m.Probability < 0 || m.Probability > 1 {
			return &ValidationError{Field: "probability", Message: fmt.Sprintf("must be between 0.0 and 1.0, got %v", m.Probability)}
		}
		for _, code := range m.StatusCodes {
			if !validStatus(code) {
				return &ValidationError{Field: "statusCodes", Message: fmt.Sprintf("invalid status code %d", code)}
			}
		}
	case MutationJSONPath:
		if len(m.Set) == 0 {
			return &ValidationError{Field: "set", Message: "at least one JSONPath is required"}
		}
	}
	return nil
}

// DelayRange parses Min and Max. Max defaults to Min.
func (m *MutationConfig) DelayRange() (time.Duration, time.Duration, error) {
	if m.Min == "" {
		return 0, 0, &ValidationError{Field: "min", Message: "is required"}
	}
	lo, err := time.ParseDuration(m.Min)
	if err != nil {
		return 0, 0, &ValidationError{Field: "min", Message: err.Error()}
	}
	if lo < 0 {
		return 0, 0, &ValidationError{Field: "min", Message: "cannot be negative"}
	}
	if m.Max == "" {
		return lo, lo, nil
	}
	hi, err := time.ParseDuration(m.Max)
	if err != nil {
		return 0, 0, &ValidationError{Field: "max", Message: err.Error()}
	}
	if hi < lo {
		return 0, 0, &ValidationError{Field: "max", Message: "must not be less than min"}
	}
	return lo, hi, nil
}

func validStatus(code int) bool {
	return code >= 100 && code <= 599
}
