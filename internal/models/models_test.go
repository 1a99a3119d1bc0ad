package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
		exit int
		msg  string
	}{
		{"not found", NotFound("web"), "SVC_NOT_FOUND", ExitRuntime, `service "web" does not exist`},
		{"exists", AlreadyExists("web"), "SVC_EXISTS", ExitRuntime, `service "web" already exists`},
		{"missing field", fmt.Errorf("x.plist: %w", &MissingFieldError{Field: "Label"}), "DESCRIPTOR_INVALID", ExitRuntime,
			"invalid plist file missing required attribute Label"},
		{"command", &CommandError{Step: "bootstrap", ExitCode: 5, Output: "Input/output error\n"}, "LAUNCHCTL_FAIL", ExitRuntime,
			"launchctl bootstrap failed with exit code 5: Input/output error"},
		{"precondition", &PreconditionError{Service: "web", Reason: "already stopped"}, "PRECONDITION", ExitRuntime,
			`service "web" is already stopped`},
		{"usage", Usage("bad %s", "flag"), "USAGE", ExitUsage, "bad flag"},
		{"other", errors.New("disk full"), "RUNTIME", ExitRuntime, "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := Classify(tt.err)
			assert.Equal(t, tt.code, ce.Code)
			assert.Equal(t, tt.exit, ce.ExitCode)
			assert.Equal(t, tt.msg, ce.Message)
			assert.ErrorIs(t, ce, tt.err)
		})
	}
	assert.Nil(t, Classify(nil))
}

func TestFormatForUser(t *testing.T) {
	msg, code := FormatForUser(nil)
	assert.Empty(t, msg)
	assert.Equal(t, ExitOK, code)

	msg, code = FormatForUser(&PreconditionError{Service: "web", Reason: "already running", Hint: "use --force"})
	assert.Equal(t, "service \"web\" is already running\nhint: use --force", msg)
	assert.Equal(t, ExitRuntime, code)

	msg, code = FormatForUser(NewCLIError("X", 0, "boom"))
	assert.Equal(t, "boom", msg)
	assert.Equal(t, ExitRuntime, code)
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Wrap("SVC_EXISTS", ExitRuntime, "dup", nil))
	assert.True(t, IsCode(err, "SVC_EXISTS"))
	assert.False(t, IsCode(err, "OTHER"))
	assert.False(t, IsCode(errors.New("plain"), "SVC_EXISTS"))
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "running", StateRunning.String())
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "unregistered", StateUnregistered.String())
	assert.True(t, Status{State: StateRunning}.Running())
	assert.False(t, Status{State: StateStopped}.Running())
}
