package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a service is absent from the registry.
	ErrNotFound = errors.New("does not exist")

	// ErrAlreadyExists is returned when registering a name twice.
	ErrAlreadyExists = errors.New("already exists")
)

// MissingFieldError reports the first required descriptor key that is absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("descriptor missing required key %q", e.Field)
}

// CommandError is a launchctl invocation that exited non-zero. Step names
// the control-plane action ("enable", "bootstrap", ...).
type CommandError struct {
	Step     string
	Args     []string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("launchctl %s failed with exit code %d", e.Step, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// PreconditionError rejects an operation the current state does not allow,
// e.g. stopping a stopped service.
type PreconditionError struct {
	Service string
	Reason  string
	Hint    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("service %q is %s", e.Service, e.Reason)
}

// NotFound wraps ErrNotFound with the service name.
func NotFound(name string) error {
	return fmt.Errorf("service %q %w", name, ErrNotFound)
}

// AlreadyExists wraps ErrAlreadyExists with the service name.
func AlreadyExists(name string) error {
	return fmt.Errorf("service %q %w", name, ErrAlreadyExists)
}
