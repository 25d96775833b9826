package cli

import (
	"errors"
	"fmt"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/ltp"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1 // Conversion failed or a command could not complete
	ExitUsage   = 2 // Invalid flags, arguments or configuration
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError reports invalid flags or arguments.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// NewUsageError creates a UsageError from a format string.
func NewUsageError(format string, args ...any) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var (
		usageErr *UsageError
		cfgErr   *ConfigError
		validErr config.ValidationError
	)
	if errors.As(err, &usageErr) || errors.As(err, &cfgErr) || errors.As(err, &validErr) {
		return ExitUsage
	}
	return ExitFailure
}

// Message returns what to print for err. Conversion failures print only
// their user-facing message.
func Message(err error) string {
	var convErr *ltp.Error
	if errors.As(err, &convErr) {
		return convErr.Message
	}
	return "Error: " + err.Error()
}
