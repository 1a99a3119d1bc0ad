package commands

import (
	"context"
	"fmt"
)

func runLoad(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("load")
	name := fs.StringP("name", "n", "", "name of the service (required for non-plist files)")
	startup := fs.Bool("startup", false, "start the service at login")
	if err := parseArgs(fs, args, 1, "load <file> [--name NAME] [--startup]"); err != nil {
		return err
	}

	loaded, err := a.Manager.Load(ctx, fs.Arg(0), *name, *startup)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, "service loaded:", loaded)
	return nil
}

func runUnload(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("unload")
	if err := parseArgs(fs, args, 1, "unload <name>"); err != nil {
		return err
	}
	if err := a.Manager.Unload(ctx, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, "service unloaded:", fs.Arg(0))
	return nil
}

func runCreatePlist(a *App, args []string) error {
	fs := newFlagSet("create_plist")
	domain := fs.String("domain", a.Config.Domain, "domain the service label uses")
	output := fs.StringP("output", "o", "", "file to write the plist to instead of stdout")
	if err := parseArgs(fs, args, 2, "create_plist <input_file> <service_name> [--domain D] [-o FILE]"); err != nil {
		return err
	}
	return a.Manager.CreateDescriptor(fs.Arg(0), fs.Arg(1), *domain, *output, a.Stdout)
}

func runAutostart(a *App, args []string) error {
	fs := newFlagSet("autostart")
	off := fs.Bool("off", false, "do not start the service at login")
	if err := parseArgs(fs, args, 1, "autostart <name> [--off]"); err != nil {
		return err
	}

	name := fs.Arg(0)
	if err := a.Manager.SetStartup(name, !*off); err != nil {
		return err
	}
	state := "enabled"
	if *off {
		state = "disabled"
	}
	fmt.Fprintf(a.Stdout, "start at login %s: %s\n", state, name)
	return nil
}
