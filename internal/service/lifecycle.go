package service

import (
	"context"
	"fmt"
	"os"

	"svcman/internal/descriptor"
	"svcman/internal/models"
	"svcman/internal/system"
)

// Start brings name to running. A missing descriptor is generated first.
// Unregistered jobs are registered, stopped jobs kickstarted. A running job
// is only restarted with force.
func (m *Manager) Start(ctx context.Context, name string, force bool) (err error) {
	defer func() { m.record(name, "start", err) }()

	rec, err := m.registry.Get(name)
	if err != nil {
		return err
	}

	path := m.descriptorPath(name)
	if !system.Exists(path) {
		if _, err := os.Stat(rec.MainFile); err != nil {
			return fmt.Errorf("file %s does not exist", rec.MainFile)
		}
		m.log(name).Debug("service config file not found, creating a new one")
		d := descriptor.Build(descriptor.Params{
			EntryPoint:   rec.MainFile,
			Name:         name,
			Domain:       m.cfg.Domain,
			LauncherPath: m.launcher,
		})
		if err := descriptor.WriteFile(path, d); err != nil {
			return err
		}
	}

	label, st, err := m.status(ctx, name)
	if err != nil {
		return err
	}

	switch st.State {
	case models.StateUnregistered:
		m.log(name).Debug("service not found, registering with launchctl")
		if err := m.ctl.Register(ctx, label, path); err != nil {
			return err
		}
		m.log(name).Info("Service started successfully")
	case models.StateStopped:
		m.log(name).Debug("starting the service")
		if err := m.ctl.Kickstart(ctx, label); err != nil {
			return err
		}
		m.log(name).Info("Service successfully started")
	case models.StateRunning:
		if !force {
			return &models.PreconditionError{
				Service: name,
				Reason:  "already running",
				Hint:    "use --force to restart it",
			}
		}
		m.log(name).Info("Restarting the service")
		if err := m.ctl.Kickstart(ctx, label); err != nil {
			return err
		}
		m.log(name).Info("Service successfully started")
	}
	return nil
}

// Stop stops a running service, with SIGKILL when kill is set.
func (m *Manager) Stop(ctx context.Context, name string, kill bool) (err error) {
	defer func() { m.record(name, "stop", err) }()

	if _, err := m.registry.Get(name); err != nil {
		return err
	}
	label, st, err := m.status(ctx, name)
	if err != nil {
		return err
	}
	if !st.Running() {
		return &models.PreconditionError{Service: name, Reason: "already stopped"}
	}

	if kill {
		err = m.ctl.Kill(ctx, label, 0)
	} else {
		err = m.ctl.Stop(ctx, label)
	}
	if err != nil {
		return err
	}
	m.log(name).Info("Service stopped successfully")
	return nil
}

// Remove unregisters the job from launchd. The registry entry and the
// descriptor stay, so a later Start registers it again.
func (m *Manager) Remove(ctx context.Context, name string) (err error) {
	defer func() { m.record(name, "remove", err) }()

	if _, err := m.registry.Get(name); err != nil {
		return err
	}
	label, st, err := m.status(ctx, name)
	if err != nil {
		return err
	}
	if st.State == models.StateUnregistered {
		return &models.PreconditionError{Service: name, Reason: "already removed"}
	}

	if err := m.ctl.Unregister(ctx, label, m.descriptorPath(name)); err != nil {
		return err
	}
	m.log(name).Info("Service removed successfully")
	return nil
}

// StartAll starts every registered service. Failures are logged and the
// remaining services are still attempted.
func (m *Manager) StartAll(ctx context.Context, force bool) error {
	names, err := m.registry.Names()
	if err != nil {
		return err
	}
	return m.each(names, "start", func(name string) error {
		return m.Start(ctx, name, force)
	})
}

// StopAll stops every running service. Stopped services are skipped.
func (m *Manager) StopAll(ctx context.Context, kill bool) error {
	names, err := m.registry.Names()
	if err != nil {
		return err
	}
	return m.each(names, "stop", func(name string) error {
		err := m.Stop(ctx, name, kill)
		if isPrecondition(err) {
			m.log(name).Debug("already stopped")
			return nil
		}
		return err
	})
}

// Startup force-starts every service flagged to start at login.
func (m *Manager) Startup(ctx context.Context) error {
	records, err := m.registry.Load()
	if err != nil {
		return err
	}
	names, err := m.registry.Names()
	if err != nil {
		return err
	}

	var startup []string
	for _, name := range names {
		if records[name].Startup {
			startup = append(startup, name)
		}
	}
	m.logger.WithField("count", len(startup)).Info("starting login services")
	return m.each(startup, "startup", func(name string) error {
		return m.Start(ctx, name, true)
	})
}

func (m *Manager) each(names []string, action string, fn func(string) error) error {
	var (
		failed []string
		first  error
	)
	for _, name := range names {
		if err := fn(name); err != nil {
			m.log(name).WithError(err).Errorf("%s failed", action)
			failed = append(failed, name)
			if first == nil {
				first = fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return wrapAll(action, failed, first)
}
