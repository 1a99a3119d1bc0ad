package commands

import (
	"context"

	"svcman/internal/logtail"
	"svcman/internal/models"
	"svcman/internal/system"
)

func runStart(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("start")
	force := fs.Bool("force", false, "start the service even if it is already running")
	watch := fs.Bool("watch", false, "follow the service output after it is started")
	if err := parseArgs(fs, args, 1, "start <name|all> [--force] [--watch]"); err != nil {
		return err
	}

	name := fs.Arg(0)
	if name == "all" {
		return a.Manager.StartAll(ctx, *force)
	}
	if err := a.Manager.Start(ctx, name, *force); err != nil {
		return err
	}
	if !*watch {
		return nil
	}

	path, err := a.Manager.LogPath(name)
	if err != nil {
		return err
	}
	if !system.Exists(path) {
		return models.NewCLIError("NO_OUTPUT", models.ExitRuntime, "output file for the service does not exist")
	}
	return logtail.Follow(ctx, path, a.Stdout, logtail.FollowOptions{})
}

func runStop(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("stop")
	remove := fs.Bool("remove", false, "stop and then unregister the service from launchd")
	kill := fs.Bool("kill", false, "force kill the service")
	const usage = "stop <name|all> [--remove|--kill]"
	if err := parseArgs(fs, args, 1, usage); err != nil {
		return err
	}
	if *remove && *kill {
		return usageError(fs, usage, "--remove and --kill are mutually exclusive")
	}

	name := fs.Arg(0)
	switch {
	case name == "all" && *remove:
		return usageError(fs, usage, "--remove needs a single service name")
	case name == "all":
		return a.Manager.StopAll(ctx, *kill)
	case *remove:
		return a.Manager.Remove(ctx, name)
	default:
		return a.Manager.Stop(ctx, name, *kill)
	}
}

func runStartup(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("startup")
	if err := parseArgs(fs, args, 0, "startup"); err != nil {
		return err
	}
	return a.Manager.Startup(ctx)
}
