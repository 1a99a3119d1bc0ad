package service

import (
	"context"

	"svcman/internal/models"
	"svcman/internal/registry"
	"svcman/internal/system"
)

// Status reports the live status of a registered service.
func (m *Manager) Status(ctx context.Context, name string) (models.Status, error) {
	if _, err := m.registry.Get(name); err != nil {
		return models.Status{}, err
	}
	_, st, err := m.status(ctx, name)
	return st, err
}

// Info assembles everything known about name.
func (m *Manager) Info(ctx context.Context, name string) (models.ServiceInfo, error) {
	rec, err := m.registry.Get(name)
	if err != nil {
		return models.ServiceInfo{}, err
	}
	return m.info(ctx, name, rec, true)
}

// StatusAll returns the info of every registered service, sorted by name.
// Process details are not collected.
func (m *Manager) StatusAll(ctx context.Context) ([]models.ServiceInfo, error) {
	records, err := m.registry.Load()
	if err != nil {
		return nil, err
	}
	names, err := m.registry.Names()
	if err != nil {
		return nil, err
	}

	out := make([]models.ServiceInfo, 0, len(names))
	for _, name := range names {
		info, err := m.info(ctx, name, records[name], false)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func (m *Manager) info(ctx context.Context, name string, rec registry.Record, withProcess bool) (models.ServiceInfo, error) {
	label, st, err := m.status(ctx, name)
	if err != nil {
		return models.ServiceInfo{}, err
	}

	info := models.ServiceInfo{
		Name:          name,
		State:         st.State,
		PID:           st.PID,
		ReturnCode:    st.LastExitCode,
		JobLabel:      label,
		Domain:        m.ctl.Domain(),
		ServiceTarget: m.ctl.Target(label),
		Startup:       rec.Startup,
		MainFile:      rec.MainFile,
	}
	if st.State != models.StateUnregistered {
		running := st.Running()
		info.Status = &running
	}
	if path := m.descriptorPath(name); system.Exists(path) {
		info.ConfigFile = &path
	}
	if path := logPath(rec.MainFile); system.Exists(path) {
		info.OutputFile = &path
	}

	if withProcess && st.Running() && m.inspector != nil {
		proc, err := m.inspector.Inspect(ctx, *st.PID)
		if err != nil {
			m.log(name).WithError(err).Debug("could not read process details")
		} else {
			info.Process = proc
		}
	}
	return info, nil
}
