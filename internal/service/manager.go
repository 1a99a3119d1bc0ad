// Package service orchestrates registered services: it joins the registry,
// the descriptor files and the launchctl control plane.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"svcman/internal/config"
	"svcman/internal/descriptor"
	"svcman/internal/launchctl"
	"svcman/internal/models"
	"svcman/internal/procinfo"
	"svcman/internal/registry"
	"svcman/internal/system"

	"github.com/sirupsen/logrus"
)

// Manager runs service operations. Every operation reads fresh state from
// the registry and launchctl; nothing is cached between calls.
type Manager struct {
	cfg       *config.Config
	registry  *registry.Store
	ctl       *launchctl.Client
	history   *sql.DB
	inspector procinfo.Inspector
	launcher  string
	logger    *logrus.Logger
}

// Options wire a Manager. History and Inspector are optional.
type Options struct {
	Config    *config.Config
	Registry  *registry.Store
	Control   *launchctl.Client
	History   *sql.DB
	Inspector procinfo.Inspector
	// LauncherPath is the svcman binary used as launcher when
	// launcher.enabled is set.
	LauncherPath string
	Logger       *logrus.Logger
}

func NewManager(opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	launcher := ""
	if opts.Config.Launcher.Enabled {
		launcher = opts.LauncherPath
	}
	return &Manager{
		cfg:       opts.Config,
		registry:  opts.Registry,
		ctl:       opts.Control,
		history:   opts.History,
		inspector: opts.Inspector,
		launcher:  launcher,
		logger:    logger,
	}
}

// descriptorPath is where the descriptor of name lives.
func (m *Manager) descriptorPath(name string) string {
	return m.cfg.DescriptorPath(name)
}

// label returns the job label of name. Imported descriptors keep their own
// label, so the stored descriptor wins over <domain>.<name>.
func (m *Manager) label(name string) (string, error) {
	return descriptor.Label(m.descriptorPath(name), descriptor.JobLabel(m.cfg.Domain, name))
}

// logPath is the stdout file of a service whose entry point is mainFile.
func logPath(mainFile string) string {
	return filepath.Join(filepath.Dir(mainFile), descriptor.OutputDir, "stdout")
}

func (m *Manager) log(name string) *logrus.Entry {
	return m.logger.WithField("service", name)
}

// record appends to the operation history. History is best effort.
func (m *Manager) record(name, action string, err error) {
	if m.history == nil {
		return
	}
	e := system.HistoryEntry{Service: name, Action: action, Result: system.ResultOK}
	if err != nil {
		e.Result = system.ResultFailed
		e.Detail = err.Error()
	}
	if herr := system.RecordHistory(m.history, e); herr != nil {
		m.log(name).WithError(herr).Warn("could not record history")
	}
}

// History lists recorded operations, newest first.
func (m *Manager) History(name string, limit int) ([]system.HistoryEntry, error) {
	if m.history == nil {
		return nil, models.NewCLIError("HISTORY_DISABLED", models.ExitRuntime,
			"operation history is disabled").WithHint("set history.enabled: true in the config file")
	}
	return system.ListHistory(m.history, name, limit)
}

// status reads the live status of name.
func (m *Manager) status(ctx context.Context, name string) (string, models.Status, error) {
	label, err := m.label(name)
	if err != nil {
		return "", models.Status{}, err
	}
	st, err := m.ctl.Status(ctx, label)
	if err != nil {
		return "", models.Status{}, err
	}
	m.log(name).WithFields(logrus.Fields{
		"label": label,
		"state": st.State.String(),
	}).Debug("queried status")
	return label, st, nil
}

// validName rejects names that cannot be used as a file name or that clash
// with the "all" selector.
func validName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return models.Usage("service name must not be empty")
	case name == "all":
		return models.Usage("%q is reserved and cannot be used as a service name", name)
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return models.Usage("invalid service name %q", name)
	}
	return nil
}

func wrapAll(action string, failed []string, first error) error {
	if first == nil {
		return nil
	}
	if len(failed) == 1 {
		return first
	}
	return fmt.Errorf("%s failed for %d services (%s): %w", action, len(failed), strings.Join(failed, ", "), first)
}
