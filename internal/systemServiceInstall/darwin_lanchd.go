package systemserviceinstall

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"svcman/internal/descriptor"
	"svcman/internal/system"
)

// agentDescriptor runs `svcman startup` at every login.
func agentDescriptor(cfg InstallConfig) descriptor.Descriptor {
	out := filepath.Join(cfg.Home, descriptor.OutputDir)
	return descriptor.Descriptor{
		Label:             AgentLabel(cfg.Domain),
		Program:           cfg.BinaryPath,
		ProgramArguments:  []string{cfg.BinaryPath, AgentCommand},
		WorkingDirectory:  cfg.Home,
		StandardOutPath:   filepath.Join(out, "startup.stdout"),
		StandardErrorPath: filepath.Join(out, "startup.stderr"),
		RunAtLoad:         true,
	}
}

func installLaunchd(cfg InstallConfig) error {
	if cfg.BinaryPath == "" {
		return errors.New("svcman binary path unknown")
	}
	log := cfg.Logger.WithField("agent", cfg.AgentPath())

	if err := cfg.Registry.Ensure(); err != nil {
		return err
	}
	if err := system.EnsureDir(cfg.DescriptorDir); err != nil {
		return err
	}
	log.Debug("created state directories")

	// launchd picks the agent up at the next login.
	if err := descriptor.WriteFile(cfg.AgentPath(), agentDescriptor(cfg)); err != nil {
		return err
	}
	log.Debug("added startup service file to LaunchAgents")
	log.Info("Installed successfully")
	return nil
}

func removeLaunchd(ctx context.Context, cfg InstallConfig) error {
	path := cfg.AgentPath()

	// Unload (best-effort)
	if cfg.Control != nil && exists(path) {
		if err := cfg.Control.Bootout(ctx, path); err != nil {
			cfg.Logger.WithError(err).Debug("login agent was not loaded")
		}
	}

	// Remove plist
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}

	cfg.Logger.WithField("agent", path).Info("Uninstalled successfully")
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
