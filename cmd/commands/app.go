package commands

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"svcman/internal/config"
	"svcman/internal/launchctl"
	"svcman/internal/models"
	"svcman/internal/registry"
	"svcman/internal/service"
	systemserviceinstall "svcman/internal/systemServiceInstall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// App carries everything a command needs. It is assembled once per
// process by cmd.Execute.
type App struct {
	Config   *config.Config
	Flags    models.FlagConfig
	Logger   *logrus.Logger
	Registry *registry.Store
	Control  *launchctl.Client
	Manager  *service.Manager
	History  *sql.DB
	Binary   string

	Help   func()
	Stdout io.Writer
	Stderr io.Writer
	// Color enables ANSI colours in tables.
	Color bool
}

func (a *App) installConfig() systemserviceinstall.InstallConfig {
	return systemserviceinstall.InstallConfig{
		BinaryPath:      a.Binary,
		Home:            a.Config.Home,
		Domain:          a.Config.Domain,
		DescriptorDir:   a.Config.DescriptorDir,
		LaunchAgentsDir: a.Config.LaunchAgentsDir,
		Registry:        a.Registry,
		Control:         a.Control,
		Logger:          a.Logger,
	}
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	return fs
}

// parseArgs parses args and checks the positional count. usage is the
// synopsis printed on mistakes, without the program name.
// longForms rewrites single-dash long flags ("-name web") to their
// double-dash form so both spellings are accepted.
func longForms(fs *pflag.FlagSet, args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if len(arg) > 2 && arg[0] == '-' && arg[1] != '-' {
			name, _, _ := strings.Cut(arg[1:], "=")
			if len(name) > 1 && fs.Lookup(name) != nil {
				arg = "-" + arg
			}
		}
		out = append(out, arg)
	}
	return out
}

func parseArgs(fs *pflag.FlagSet, args []string, want int, usage string) error {
	if err := fs.Parse(longForms(fs, args)); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return usageError(fs, usage, "")
		}
		return usageError(fs, usage, err.Error())
	}
	if want >= 0 && fs.NArg() != want {
		return usageError(fs, usage, "")
	}
	return nil
}

func usageError(fs *pflag.FlagSet, usage, problem string) error {
	var b strings.Builder
	if problem != "" {
		fmt.Fprintf(&b, "%s: %s\n", fs.Name(), problem)
	}
	fmt.Fprintf(&b, "usage: svcman %s", usage)
	if defaults := strings.TrimRight(fs.FlagUsages(), "\n"); defaults != "" {
		b.WriteString("\n" + defaults)
	}
	return models.NewCLIError("USAGE", models.ExitUsage, b.String())
}
