package config

import "fmt"

// ConfigError represents a configuration error with context.
type ConfigError struct {
	Section string
	Option  string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Option != "" && e.Section != "" {
		return fmt.Sprintf("option '%s' in section '%s': %s", e.Option, e.Section, e.Message)
	}
	if e.Option != "" {
		return fmt.Sprintf("option '%s': %s", e.Option, e.Message)
	}
	if e.Section != "" {
		return fmt.Sprintf("section '%s': %s", e.Section, e.Message)
	}
	return e.Message
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// WrapError wraps an existing error with config context.
func WrapError(section, option string, err error) *ConfigError {
	return &ConfigError{
		Section: section,
		Option:  option,
		Message: err.Error(),
		Cause:   err,
	}
}

// ErrMissingOption returns an error for a required but empty option.
func ErrMissingOption(section, option string) *ConfigError {
	return &ConfigError{
		Section: section,
		Option:  option,
		Message: "must be specified",
	}
}

// ErrInvalidValue returns an error for an invalid value.
func ErrInvalidValue(section, option, value, expected string) *ConfigError {
	return &ConfigError{
		Section: section,
		Option:  option,
		Message: fmt.Sprintf("invalid value '%s', expected %s", value, expected),
	}
}

// ErrOutOfRange returns an error for a value outside the allowed range.
func ErrOutOfRange(section, option string, value float64, constraint string) *ConfigError {
	return &ConfigError{
		Section: section,
		Option:  option,
		Message: fmt.Sprintf("value %v %s", value, constraint),
	}
}

// ErrInvalidChoice returns an error for an invalid choice value.
func ErrInvalidChoice(section, option, value string, choices []string) *ConfigError {
	return &ConfigError{
		Section: section,
		Option:  option,
		Message: fmt.Sprintf("'%s' is not a valid choice (valid: %v)", value, choices),
	}
}
