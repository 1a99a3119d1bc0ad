// Package launcher runs a service program with the PATH the operator had
// when svcman was last invoked. launchd starts jobs with a minimal
// environment, so descriptors generated with the launcher enabled point
// here instead of at the program.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"svcman/internal/system"

	"github.com/sirupsen/logrus"
)

// StopGrace is how long a cancelled program gets to exit after SIGTERM
// before it is killed.
const StopGrace = 10 * time.Second

// Stdio are the streams handed to the program.
type Stdio struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes argv with PATH restored from envFile and returns the
// program's exit code. A missing env file keeps the current PATH.
func Run(ctx context.Context, envFile string, argv []string, stdio Stdio, logger *logrus.Logger) (int, error) {
	if len(argv) == 0 {
		return 0, errors.New("launch: no program given")
	}

	env := os.Environ()
	path, err := system.LoadPath(envFile)
	switch {
	case err == nil && path != "":
		env = withPath(env, path)
		logger.WithField("env_file", envFile).Debug("restored PATH")
	case err != nil && !os.IsNotExist(err):
		return 0, fmt.Errorf("read %s: %w", envFile, err)
	default:
		logger.WithField("env_file", envFile).Warn("no saved PATH, using the current one")
	}

	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Env = env
	c.Stdin = stdio.Stdin
	c.Stdout = stdio.Stdout
	c.Stderr = stdio.Stderr
	// launchctl stop sends SIGTERM to the launcher; forward it to the program.
	c.Cancel = func() error { return c.Process.Signal(syscall.SIGTERM) }
	c.WaitDelay = StopGrace

	err = c.Run()
	if c.ProcessState != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		logger.WithField("program", argv[0]).Debug("program exited after stop signal")
		return exitCode(c.ProcessState), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitCode(exitErr.ProcessState), nil
	}
	if err != nil {
		return 0, fmt.Errorf("launch %s: %w", argv[0], err)
	}
	return 0, nil
}

// exitCode follows the shell convention of 128+signal for programs ended
// by a signal.
func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}

func withPath(env []string, path string) []string {
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		out = append(out, kv)
	}
	return append(out, "PATH="+path)
}
