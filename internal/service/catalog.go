package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"svcman/internal/descriptor"
	"svcman/internal/models"
	"svcman/internal/registry"
	"svcman/internal/system"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
)

func isPrecondition(err error) bool {
	var pre *models.PreconditionError
	return errors.As(err, &pre)
}

// Load registers file under name. A .plist file is validated, imported as
// the service's descriptor, and names the service after its label unless
// name is given. Any other file is an entry point and needs a name.
func (m *Manager) Load(ctx context.Context, file, name string, startup bool) (_ string, err error) {
	defer func() { m.record(name, "load", err) }()

	abs, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("file %s does not exist", file)
	}

	if filepath.Ext(abs) != ".plist" {
		if name == "" {
			return "", models.Usage("missing name for the service, specify it with --name")
		}
		if err := validName(name); err != nil {
			return "", err
		}
		if err := m.registry.Add(name, registry.Record{MainFile: abs, Startup: startup}); err != nil {
			return "", err
		}
		m.log(name).WithField("mainfile", abs).Info("Service loaded successfully")
		return name, nil
	}

	d, err := descriptor.ReadFile(abs)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = descriptor.SplitLabel(d.Label, m.cfg.Domain)
	}
	if err := validName(name); err != nil {
		return "", err
	}

	if err := m.registry.Add(name, registry.Record{MainFile: d.MainFile(), Startup: startup}); err != nil {
		return "", err
	}

	if err := m.importDescriptor(abs, m.descriptorPath(name)); err != nil {
		if rerr := m.registry.Remove(name); rerr != nil {
			m.log(name).WithError(rerr).Warn("could not drop registry entry after failed import")
		}
		return "", err
	}
	m.log(name).WithFields(logrus.Fields{
		"label":    d.Label,
		"mainfile": d.MainFile(),
	}).Info("Service loaded successfully")
	return name, nil
}

// importDescriptor copies the descriptor at src into the descriptor
// directory unless it already lives there.
func (m *Manager) importDescriptor(src, dest string) error {
	if filepath.Clean(src) == filepath.Clean(dest) {
		return nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := system.EnsureDir(filepath.Dir(dest)); err != nil {
		return err
	}
	if err := renameio.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("copy descriptor: %w", err)
	}
	return nil
}

// Unload unregisters the job when launchd knows it, then forgets the
// service. A failed unregister leaves the registry untouched.
func (m *Manager) Unload(ctx context.Context, name string) (err error) {
	defer func() { m.record(name, "unload", err) }()

	if _, err := m.registry.Get(name); err != nil {
		return err
	}
	label, st, err := m.status(ctx, name)
	if err != nil {
		return err
	}

	path := m.descriptorPath(name)
	if st.State != models.StateUnregistered {
		if err := m.ctl.Unregister(ctx, label, path); err != nil {
			return err
		}
		m.log(name).Debug("removed the service from launchd")
	}

	if err := m.registry.Remove(name); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove descriptor: %w", err)
	}
	m.log(name).Info("Service unloaded successfully")
	return nil
}

// SetStartup flags whether the login agent starts name.
func (m *Manager) SetStartup(name string, on bool) (err error) {
	action := "autostart-on"
	if !on {
		action = "autostart-off"
	}
	defer func() { m.record(name, action, err) }()
	return m.registry.SetStartup(name, on)
}

// CreateDescriptor renders the descriptor for entryPoint without
// registering anything. It is written to output, or to w when output is
// empty. An empty domain uses the configured one.
func (m *Manager) CreateDescriptor(entryPoint, name, domain, output string, w io.Writer) error {
	abs, err := filepath.Abs(entryPoint)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("file %s does not exist", entryPoint)
	}
	if err := validName(name); err != nil {
		return err
	}
	if domain == "" {
		domain = m.cfg.Domain
	}

	d := descriptor.Build(descriptor.Params{
		EntryPoint:   abs,
		Name:         name,
		Domain:       domain,
		LauncherPath: m.launcher,
	})
	if output != "" {
		return descriptor.WriteFile(output, d)
	}
	data, err := descriptor.Marshal(d)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// LogPath returns the stdout file of name.
func (m *Manager) LogPath(name string) (string, error) {
	rec, err := m.registry.Get(name)
	if err != nil {
		return "", err
	}
	return logPath(rec.MainFile), nil
}
