package commands

import (
	"context"

	"svcman/internal/models"
)

// Dispatch runs the command named by args[0].
func Dispatch(ctx context.Context, a *App, args []string) error {
	if len(args) == 0 {
		a.Help()
		return models.Usage("missing command")
	}

	rest := args[1:]
	switch args[0] {
	case "start":
		return runStart(ctx, a, rest)
	case "stop":
		return runStop(ctx, a, rest)
	case "status":
		return runStatus(ctx, a, rest)
	case "info":
		return runInfo(ctx, a, rest)
	case "logs":
		return runLogs(ctx, a, rest)
	case "load":
		return runLoad(ctx, a, rest)
	case "unload":
		return runUnload(ctx, a, rest)
	case "create_plist":
		return runCreatePlist(a, rest)
	case "autostart":
		return runAutostart(a, rest)
	case "startup":
		return runStartup(ctx, a, rest)
	case "history":
		return runHistory(a, rest)
	case "install":
		return runInstallService(a, rest)
	case "uninstall":
		return runRemoveService(ctx, a, rest)
	case "doctor":
		return runDoctor(a, rest)
	case "config":
		return runConfig(a, rest)
	case "help":
		a.Help()
		return nil
	default:
		return models.Usage("unknown command: %s", args[0]).WithHint("run svcman help for the list of commands")
	}
}
