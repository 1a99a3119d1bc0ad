package cmd

import (
	"fmt"
	"os"

	"github.com/Des1red/clihelp"
)

// printHelp writes to stdout, where clihelp prints its rows.
func printHelp() {
	w := os.Stdout
	fmt.Fprintln(w, "svcman - manage user background services through launchctl")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  svcman [-v|-vv] [--config FILE] <command> [args]")
	fmt.Fprintln(w)

	// ─── Global ──────────────────────────────────────────────
	fmt.Fprintln(w, "Global flags:")
	clihelp.Print(
		clihelp.F("-v, --verbose", "", "Increase verbosity (-v info, -vv debug)"),
		clihelp.F("--config", "path", "Config file (default <home>/config.yaml)"),
		clihelp.F("--no-color", "", "Disable coloured output"),
	)
	fmt.Fprintln(w)

	// ─── Lifecycle ───────────────────────────────────────────
	fmt.Fprintln(w, "Lifecycle:")
	clihelp.Print(
		clihelp.F("start", "name|all", "Start a service (--force restarts, --watch follows output)"),
		clihelp.F("stop", "name|all", "Stop a service (--kill sends SIGKILL, --remove unregisters)"),
		clihelp.F("startup", "", "Start every service flagged for login"),
	)
	fmt.Fprintln(w)

	// ─── Inspection ──────────────────────────────────────────
	fmt.Fprintln(w, "Inspection:")
	clihelp.Print(
		clihelp.F("status", "", "Status of all services (--json)"),
		clihelp.F("info", "name", "Everything known about a service (--json)"),
		clihelp.F("logs", "name", "Service output (--watch, --file, --clear, --json)"),
		clihelp.F("history", "[name]", "Recorded operations (--limit N, --json)"),
	)
	fmt.Fprintln(w)

	// ─── Registry ────────────────────────────────────────────
	fmt.Fprintln(w, "Registry:")
	clihelp.Print(
		clihelp.F("load", "file", "Register a script or import a .plist (--name, --startup)"),
		clihelp.F("unload", "name", "Unregister a service and forget it"),
		clihelp.F("create_plist", "file name", "Print a plist for a script (--domain, -o)"),
		clihelp.F("autostart", "name", "Start a service at login (--off to disable)"),
	)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Setup:")
	clihelp.Print(
		clihelp.F("install", "", "Create state files and install the login agent"),
		clihelp.F("uninstall", "", "Remove the login agent"),
		clihelp.F("doctor", "", "Print an environment report"),
		clihelp.F("config", "show|init", "Print or write the effective configuration"),
		clihelp.F("help", "", "Show this help"),
	)
	fmt.Fprintln(w)

	// ─── Notes ───────────────────────────────────────────────
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  • Services run in the gui/<uid> domain of the current user")
	fmt.Fprintln(w, "  • Running as root is refused")
	fmt.Fprintln(w, "  • No retries; multi-step operations are not rolled back")
	fmt.Fprintln(w, "  • Exit codes: 0 ok, 1 failure, 2 usage error")
}
