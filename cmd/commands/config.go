package commands

import (
	"fmt"
	"path/filepath"

	"svcman/internal/config"
)

func runConfig(a *App, args []string) error {
	fs := newFlagSet("config")
	path := fs.String("path", "", "file written by init (default <home>/config.yaml)")
	force := fs.Bool("force", false, "overwrite an existing config file")
	const usage = "config show|init [--path FILE] [--force]"
	if err := parseArgs(fs, args, 1, usage); err != nil {
		return err
	}

	switch fs.Arg(0) {
	case "show":
		data, err := a.Config.YAML()
		if err != nil {
			return err
		}
		_, err = a.Stdout.Write(data)
		return err
	case "init":
		target := *path
		if target == "" {
			target = filepath.Join(a.Config.Home, "config.yaml")
		}
		if err := config.Init(target, a.Config, *force); err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout, "config written:", target)
		return nil
	default:
		return usageError(fs, usage, fmt.Sprintf("unknown subcommand %q", fs.Arg(0)))
	}
}
