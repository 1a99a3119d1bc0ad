// Package launchctltest provides an in-memory launchd for tests.
package launchctltest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"svcman/internal/descriptor"
	"svcman/internal/launchctl"
)

// Job is one loaded job. PID 0 means the job is loaded but not running.
type Job struct {
	PID      int
	ExitCode int
}

// Runner mimics the subset of launchctl svcman calls. It understands the
// gui/<uid>/<label> target syntax and reads labels out of descriptor files
// passed to bootstrap/bootout.
type Runner struct {
	mu sync.Mutex

	Jobs    map[string]*Job
	Enabled map[string]bool
	Calls   [][]string

	// Fail forces the given subcommand to exit with the mapped code.
	Fail map[string]int
	// Extra lines appended to `list` output, verbatim.
	Extra []string

	nextPID int
}

var _ launchctl.Runner = (*Runner)(nil)

func New() *Runner {
	return &Runner{
		Jobs:    map[string]*Job{},
		Enabled: map[string]bool{},
		Fail:    map[string]int{},
		nextPID: 1000,
	}
}

// Load puts a job into the fake domain directly.
func (r *Runner) Load(label string, pid, exitCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Jobs[label] = &Job{PID: pid, ExitCode: exitCode}
}

// Count returns how many times subcommand was invoked.
func (r *Runner) Count(subcommand string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.Calls {
		if len(c) > 0 && c[0] == subcommand {
			n++
		}
	}
	return n
}

// Subcommands returns the invoked subcommands in order, `list` excluded.
func (r *Runner) Subcommands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, c := range r.Calls {
		if len(c) > 0 && c[0] != "list" {
			out = append(out, c[0])
		}
	}
	return out
}

func (r *Runner) Run(_ context.Context, _ string, args ...string) (launchctl.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Calls = append(r.Calls, append([]string(nil), args...))
	if len(args) == 0 {
		return launchctl.Result{ExitCode: 64, Stderr: "usage"}, nil
	}
	if code, ok := r.Fail[args[0]]; ok {
		return launchctl.Result{ExitCode: code, Stderr: args[0] + ": injected failure"}, nil
	}

	switch args[0] {
	case "list":
		return launchctl.Result{Stdout: r.list()}, nil
	case "enable":
		r.Enabled[labelOf(args[1])] = true
	case "disable":
		r.Enabled[labelOf(args[1])] = false
	case "bootstrap":
		d, err := descriptor.ReadFile(args[2])
		if err != nil {
			return launchctl.Result{ExitCode: 5, Stderr: "Bootstrap failed: 5: Input/output error"}, nil
		}
		if _, ok := r.Jobs[d.Label]; ok {
			return launchctl.Result{ExitCode: 37, Stderr: "Bootstrap failed: 37: Operation already in progress"}, nil
		}
		r.Jobs[d.Label] = &Job{PID: r.pid()}
	case "bootout":
		label, err := descriptor.Label(args[2], "")
		if err != nil || label == "" {
			return launchctl.Result{ExitCode: 5, Stderr: "Boot-out failed: 5: Input/output error"}, nil
		}
		if _, ok := r.Jobs[label]; !ok {
			return launchctl.Result{ExitCode: 3, Stderr: "Boot-out failed: 3: No such process"}, nil
		}
		delete(r.Jobs, label)
	case "kickstart":
		job, ok := r.Jobs[labelOf(args[len(args)-1])]
		if !ok {
			return launchctl.Result{ExitCode: 113, Stderr: "Could not find service in domain for port"}, nil
		}
		job.PID = r.pid()
	case "kill":
		job, ok := r.Jobs[labelOf(args[2])]
		if !ok || job.PID == 0 {
			return launchctl.Result{ExitCode: 3, Stderr: "No such process"}, nil
		}
		job.PID = 0
		job.ExitCode = -9
	case "stop":
		job, ok := r.Jobs[args[1]]
		if !ok {
			return launchctl.Result{ExitCode: 3, Stderr: "No such process"}, nil
		}
		job.PID = 0
		job.ExitCode = 0
	default:
		return launchctl.Result{ExitCode: 64, Stderr: "Unrecognized subcommand: " + args[0]}, nil
	}
	return launchctl.Result{}, nil
}

func (r *Runner) pid() int {
	r.nextPID++
	return r.nextPID
}

func (r *Runner) list() string {
	labels := make([]string, 0, len(r.Jobs))
	for label := range r.Jobs {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString("PID\tStatus\tLabel\n")
	for _, label := range labels {
		job := r.Jobs[label]
		pid := "-"
		if job.PID != 0 {
			pid = fmt.Sprint(job.PID)
		}
		fmt.Fprintf(&b, "%s\t%d\t%s\n", pid, job.ExitCode, label)
	}
	for _, line := range r.Extra {
		b.WriteString(line + "\n")
	}
	return b.String()
}

// labelOf strips the gui/<uid>/ prefix from a service target.
func labelOf(target string) string {
	parts := strings.SplitN(target, "/", 3)
	if len(parts) == 3 {
		return parts[2]
	}
	return target
}
