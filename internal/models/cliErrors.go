package models

import (
	"errors"
	"fmt"
)

// Exit codes. Every domain failure is ExitRuntime; usage mistakes are
// ExitUsage so scripts can tell the two apart.
const (
	ExitOK      = 0
	ExitRuntime = 1 // control-plane failure, precondition violation, missing entry
	ExitUsage   = 2 // invalid flags / bad CLI usage
)

// CLIError is a user-facing error with optional hint + wrapped cause.
// Message/Hint are intended to be printed to the terminal.
type CLIError struct {
	Code     string // stable identifier for matching/logging (e.g. "SVC_NOT_FOUND")
	Message  string // user-facing message
	Hint     string // optional "try this"
	ExitCode int    // process exit code

	Cause error // underlying error (optional)
}

func (e *CLIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func (e *CLIError) WithHint(h string) *CLIError {
	if e == nil {
		return nil
	}
	e.Hint = h
	return e
}

func (e *CLIError) WithCause(err error) *CLIError {
	if e == nil {
		return nil
	}
	e.Cause = err
	return e
}

func NewCLIError(code string, exitCode int, msg string) *CLIError {
	return &CLIError{
		Code:    code,
		Message: msg,
		ExitCode: func() int {
			if exitCode == 0 {
				return ExitRuntime
			}
			return exitCode
		}(),
	}
}

// Wrap creates a CLIError while preserving an underlying cause.
func Wrap(code string, exitCode int, msg string, cause error) *CLIError {
	return NewCLIError(code, exitCode, msg).WithCause(cause)
}

// Usage builds an ExitUsage error.
func Usage(format string, args ...any) *CLIError {
	return NewCLIError("USAGE", ExitUsage, fmt.Sprintf(format, args...))
}

// IsCode checks whether err (or any wrapped error) is a CLIError with the given code.
func IsCode(err error, code string) bool {
	var ce *CLIError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// Classify turns a domain error into a CLIError. Errors that already are
// CLIErrors pass through untouched.
func Classify(err error) *CLIError {
	if err == nil {
		return nil
	}

	var ce *CLIError
	if errors.As(err, &ce) {
		return ce
	}

	var (
		missing *MissingFieldError
		cmdErr  *CommandError
		pre     *PreconditionError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return Wrap("SVC_NOT_FOUND", ExitRuntime, err.Error(), err).
			WithHint("list registered services with: svcman status")
	case errors.Is(err, ErrAlreadyExists):
		return Wrap("SVC_EXISTS", ExitRuntime, err.Error(), err)
	case errors.As(err, &missing):
		return Wrap("DESCRIPTOR_INVALID", ExitRuntime,
			fmt.Sprintf("invalid plist file missing required attribute %s", missing.Field), err)
	case errors.As(err, &cmdErr):
		return Wrap("LAUNCHCTL_FAIL", ExitRuntime, err.Error(), err).
			WithHint("re-run with -vv to see the launchctl output")
	case errors.As(err, &pre):
		ce := Wrap("PRECONDITION", ExitRuntime, err.Error(), err)
		if pre.Hint != "" {
			ce.WithHint(pre.Hint)
		}
		return ce
	default:
		return Wrap("RUNTIME", ExitRuntime, err.Error(), err)
	}
}

// FormatForUser builds the terminal output string for a CLIError.
// Use this for printing; keep logging separate.
func FormatForUser(err error) (text string, exitCode int) {
	if err == nil {
		return "", ExitOK
	}

	ce := Classify(err)
	exit := ce.ExitCode
	if exit == 0 {
		exit = ExitRuntime
	}

	if ce.Hint != "" {
		return fmt.Sprintf("%s\nhint: %s", ce.Message, ce.Hint), exit
	}
	return ce.Message, exit
}
