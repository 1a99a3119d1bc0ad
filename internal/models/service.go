package models

import "time"

// State is the control-plane view of a job.
type State int

const (
	StateUnregistered State = iota
	StateStopped
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unregistered"
	}
}

// Status is derived from one `launchctl list` line. It is computed on demand
// and never persisted. PID is only set while running.
type Status struct {
	State        State
	PID          *int
	LastExitCode *int
}

// Running reports whether the job currently has a process.
func (s Status) Running() bool { return s.State == StateRunning }

// ProcessInfo holds live details of a running service process.
type ProcessInfo struct {
	Name       string    `json:"name,omitempty"`
	Cmdline    string    `json:"cmdline,omitempty"`
	RSSBytes   uint64    `json:"rss_bytes"`
	CPUPercent float64   `json:"cpu_percent"`
	StartedAt  time.Time `json:"started_at"`
}

// ServiceInfo is the presentation-ready record for `info` and `status`.
type ServiceInfo struct {
	Name          string       `json:"-"`
	Status        *bool        `json:"status"`
	PID           *int         `json:"pid"`
	ReturnCode    *int         `json:"return_code"`
	JobLabel      string       `json:"job_label"`
	Domain        string       `json:"domain"`
	ServiceTarget string       `json:"service_target"`
	ConfigFile    *string      `json:"config_file"`
	OutputFile    *string      `json:"output_file"`
	Startup       bool         `json:"startup"`
	MainFile      string       `json:"mainfile"`
	Process       *ProcessInfo `json:"process,omitempty"`

	State State `json:"-"`
}
