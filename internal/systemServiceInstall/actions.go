package systemserviceinstall

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"svcman/internal/launchctl"
	"svcman/internal/registry"

	"github.com/sirupsen/logrus"
)

// AgentCommand is the svcman command the login agent runs.
const AgentCommand = "startup"

type InstallConfig struct {
	BinaryPath      string
	Home            string
	Domain          string
	DescriptorDir   string
	LaunchAgentsDir string
	Registry        *registry.Store
	Control         *launchctl.Client // only needed by Remove
	Logger          *logrus.Logger
}

// AgentLabel is the label of the login agent that starts flagged services.
func AgentLabel(domain string) string {
	return domain + "." + AgentCommand
}

// AgentPath is where the login agent descriptor is installed.
func (c InstallConfig) AgentPath() string {
	return filepath.Join(c.LaunchAgentsDir, AgentLabel(c.Domain)+".plist")
}

// Installed reports whether the state directories and the login agent exist.
func Installed(cfg InstallConfig) bool {
	return exists(cfg.Registry.Path()) && exists(cfg.DescriptorDir) && exists(cfg.AgentPath())
}

// Install prepares svcman's state and installs the login agent.
func Install(cfg InstallConfig) error {
	switch runtime.GOOS {
	case "darwin":
		return installLaunchd(cfg)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// Remove unloads and deletes the login agent. Registered services and the
// registry are left alone.
func Remove(ctx context.Context, cfg InstallConfig) error {
	switch runtime.GOOS {
	case "darwin":
		return removeLaunchd(ctx, cfg)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
