package commands

import (
	"context"
	"fmt"

	"svcman/internal/models"
	systemserviceinstall "svcman/internal/systemServiceInstall"
)

func runInstallService(a *App, args []string) error {
	fs := newFlagSet("install")
	if err := parseArgs(fs, args, 0, "install"); err != nil {
		return err
	}

	cfg := a.installConfig()
	if err := systemserviceinstall.Install(cfg); err != nil {
		return models.Wrap("INSTALL_FAIL", models.ExitRuntime, "service installation failed: "+err.Error(), err)
	}
	fmt.Fprintln(a.Stdout, "login agent installed:", cfg.AgentPath())
	return nil
}

func runRemoveService(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("uninstall")
	if err := parseArgs(fs, args, 0, "uninstall"); err != nil {
		return err
	}

	if err := systemserviceinstall.Remove(ctx, a.installConfig()); err != nil {
		return models.Wrap("UNINSTALL_FAIL", models.ExitRuntime, "service removal failed: "+err.Error(), err)
	}
	fmt.Fprintln(a.Stdout, "login agent removed")
	return nil
}
