package cmd

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	"svcman/cmd/commands"
	"svcman/internal/config"
	"svcman/internal/launchctl"
	"svcman/internal/logging"
	"svcman/internal/models"
	"svcman/internal/procinfo"
	"svcman/internal/registry"
	"svcman/internal/service"
	"svcman/internal/system"
	systemserviceinstall "svcman/internal/systemServiceInstall"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// commands that must work before svcman is installed.
var setupCommands = map[string]bool{
	"install":   true,
	"uninstall": true,
	"doctor":    true,
	"config":    true,
	"help":      true,
}

// Execute runs the main execution flow
func Execute() {
	// Setup flags and parse them
	flags, args, help, err := parseGlobalFlags(os.Args[1:])
	if err != nil {
		printHelp()
		commands.Fatal(err)
	}
	if help || (len(args) > 0 && args[0] == "help") {
		printHelp()
		return
	}
	if len(args) == 0 {
		printHelp()
		commands.Fatal(models.Usage("missing command"))
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		commands.Fatal(models.Wrap("CONFIG_LOAD", models.ExitUsage, err.Error(), err))
	}

	// Setup structured logging
	logger := logging.SetupLogger(logging.Options{
		Verbosity:  flags.Verbosity,
		NoColor:    flags.NoColor,
		File:       cfg.Logging.File,
		FileLevel:  cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// launchd runs the launcher with a bare environment; it must not touch
	// the saved PATH or any other state.
	if args[0] == "launch" {
		code, err := commands.Launch(ctx, cfg, logger, args[1:])
		if err != nil {
			stop()
			commands.Fatal(err)
		}
		stop()
		os.Exit(code)
	}

	if system.IsRoot() {
		commands.Fatal(models.NewCLIError("ROOT", models.ExitUsage,
			"to manage user services the command needs to be run as a non-root user"))
	}

	if err := system.SavePath(cfg.Launcher.EnvFile, os.Getenv("PATH")); err != nil {
		logger.WithError(err).Warn("could not save PATH for the launcher")
	}

	app := buildApp(cfg, flags, logger)
	if app.History != nil {
		defer app.History.Close()
	}

	autoInstall(app, args[0])

	if err := commands.Dispatch(ctx, app, args); err != nil {
		logger.WithError(err).Debug("command failed")
		if app.History != nil {
			app.History.Close()
		}
		stop()
		commands.Fatal(err)
	}
}

func buildApp(cfg *config.Config, flags models.FlagConfig, logger *logrus.Logger) *commands.App {
	reg := registry.Open(cfg.RegistryFile, logger)
	ctl := launchctl.New(cfg.Launchctl.Path, os.Getuid(), cfg.Launchctl.Match, nil, logger)

	var db *sql.DB
	if cfg.History.Enabled {
		var err error
		db, err = system.InitDB(cfg.History.Path)
		if err != nil {
			logger.WithError(err).Warn("operation history disabled")
			db = nil
		}
	}

	binary, err := system.Executable()
	if err != nil {
		logger.WithError(err).Warn("could not resolve the svcman binary")
	}
	if cfg.Launcher.Enabled && binary == "" {
		logger.Warn("launcher disabled: svcman binary path unknown")
	}

	mgr := service.NewManager(service.Options{
		Config:       cfg,
		Registry:     reg,
		Control:      ctl,
		History:      db,
		Inspector:    procinfo.Gopsutil{},
		LauncherPath: binary,
		Logger:       logger,
	})

	return &commands.App{
		Config:   cfg,
		Flags:    flags,
		Logger:   logger,
		Registry: reg,
		Control:  ctl,
		Manager:  mgr,
		History:  db,
		Binary:   binary,
		Help:     printHelp,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Color:    !flags.NoColor && term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// autoInstall performs the first-run installation.
func autoInstall(app *commands.App, command string) {
	if !app.Config.AutoInstall || setupCommands[command] {
		return
	}

	installCfg := systemserviceinstall.InstallConfig{
		BinaryPath:      app.Binary,
		Home:            app.Config.Home,
		Domain:          app.Config.Domain,
		DescriptorDir:   app.Config.DescriptorDir,
		LaunchAgentsDir: app.Config.LaunchAgentsDir,
		Registry:        app.Registry,
		Logger:          app.Logger,
	}
	if systemserviceinstall.Installed(installCfg) {
		return
	}

	app.Logger.Info("Installing svcman because this is the first run")
	if err := systemserviceinstall.Install(installCfg); err != nil {
		app.Logger.WithError(err).Warn("first-run installation failed")
		// The registry is still needed by every command.
		if err := app.Registry.Ensure(); err != nil {
			app.Logger.WithError(err).Warn("could not create the registry")
		}
	}
}
