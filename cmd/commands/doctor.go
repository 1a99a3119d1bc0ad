package commands

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"svcman/internal/system"
	systemserviceinstall "svcman/internal/systemServiceInstall"
)

func runDoctor(a *App, args []string) error {
	fs := newFlagSet("doctor")
	if err := parseArgs(fs, args, 0, "doctor"); err != nil {
		return err
	}

	w := a.Stdout
	cfg := a.Config
	fmt.Fprintln(w, "svcman Doctor Report")
	fmt.Fprintln(w, "--------------------")
	fmt.Fprintf(w, "OS                : %s\n", runtime.GOOS)
	fmt.Fprintf(w, "Running as        : %s (uid=%d)\n", os.Getenv("USER"), os.Getuid())
	fmt.Fprintf(w, "Domain            : %s\n", cfg.Domain)
	fmt.Fprintf(w, "Config file       : %s\n", orNone(cfg.File))

	fmt.Fprintln(w, "\nRegistry")
	checkPath(w, cfg.RegistryFile)

	fmt.Fprintln(w, "\nDescriptors")
	checkPath(w, cfg.DescriptorDir)

	fmt.Fprintln(w, "\nLogin agent")
	checkPath(w, a.installConfig().AgentPath())
	fmt.Fprintf(w, "  Installed       : %t\n", systemserviceinstall.Installed(a.installConfig()))

	if cfg.History.Enabled {
		fmt.Fprintln(w, "\nHistory database")
		checkPath(w, cfg.History.Path)
	}

	fmt.Fprintln(w, "\nLogs")
	checkPath(w, cfg.Logging.File)

	fmt.Fprintln(w, "\nRuntime")
	checkLaunchctl(w, cfg.Launchctl.Path)
	checkServices(a)
	return nil
}

func checkPath(w io.Writer, path string) {
	_, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(w, "  Path            : %s\n", path)
		fmt.Fprintf(w, "  Exists          : no (%v)\n", err)
		return
	}

	fmt.Fprintf(w, "  Path            : %s\n", path)
	fmt.Fprintf(w, "  Exists          : yes\n")

	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		// Directories cannot be opened for writing.
		if info, serr := os.Stat(path); serr == nil && info.IsDir() {
			return
		}
		fmt.Fprintf(w, "  Writable        : no (%v)\n", err)
		return
	}
	f.Close()
	fmt.Fprintf(w, "  Writable        : yes\n")
}

func checkLaunchctl(w io.Writer, name string) {
	path, err := exec.LookPath(name)
	if err != nil {
		fmt.Fprintf(w, "  launchctl       : not found (%v)\n", err)
		return
	}
	fmt.Fprintf(w, "  launchctl       : %s\n", path)
}

func checkServices(a *App) {
	w := a.Stdout
	names, err := a.Registry.Names()
	if err != nil {
		fmt.Fprintf(w, "  Services        : unreadable (%v)\n", err)
		return
	}
	fmt.Fprintf(w, "  Services        : %d registered\n", len(names))

	records, err := a.Registry.Load()
	if err != nil {
		return
	}
	for _, name := range names {
		if !system.Exists(records[name].MainFile) {
			fmt.Fprintf(w, "  Missing entry   : %s (%s)\n", name, records[name].MainFile)
		}
	}
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
