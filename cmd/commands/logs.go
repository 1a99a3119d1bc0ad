package commands

import (
	"context"
	"fmt"

	"svcman/internal/logtail"
	"svcman/internal/models"
	"svcman/internal/system"
)

func runLogs(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("logs")
	watch := fs.Bool("watch", false, "follow the service output")
	file := fs.Bool("file", false, "print the path of the log file")
	clearLog := fs.Bool("clear", false, "clear the log file")
	asJSON := fs.Bool("json", false, "output the log lines as JSON")
	const usage = "logs <name> [--watch|--file|--clear] [--json]"
	if err := parseArgs(fs, args, 1, usage); err != nil {
		return err
	}
	if countTrue(*watch, *file, *clearLog) > 1 {
		return usageError(fs, usage, "--watch, --file and --clear are mutually exclusive")
	}

	name := fs.Arg(0)
	path, err := a.Manager.LogPath(name)
	if err != nil {
		return err
	}
	if !system.Exists(path) {
		return models.NewCLIError("NO_OUTPUT", models.ExitRuntime, "output file for the service does not exist")
	}

	switch {
	case *watch:
		st, err := a.Manager.Status(ctx, name)
		if err != nil {
			return err
		}
		if st.Running() {
			return logtail.Follow(ctx, path, a.Stdout, logtail.FollowOptions{})
		}
		a.Logger.WithField("service", name).Info("Service is not running, displaying previous logs")
	case *file:
		fmt.Fprintln(a.Stdout, path)
		return nil
	case *clearLog:
		if err := logtail.Clear(path); err != nil {
			return err
		}
		a.Logger.WithField("service", name).Info("Cleared log file successfully")
		return nil
	}

	return logtail.Print(a.Stdout, path, *asJSON)
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
