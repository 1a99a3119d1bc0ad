package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"svcman/internal/models"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func runStatus(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("status")
	asJSON := fs.Bool("json", false, "output service status as JSON")
	if err := parseArgs(fs, args, 0, "status [--json]"); err != nil {
		return err
	}

	infos, err := a.Manager.StatusAll(ctx)
	if err != nil {
		return err
	}

	if *asJSON {
		byName := make(map[string]models.ServiceInfo, len(infos))
		for _, info := range infos {
			byName[info.Name] = info
		}
		return writeJSON(a.Stdout, byName)
	}

	if len(infos) == 0 {
		fmt.Fprintln(a.Stdout, "no services registered")
		return nil
	}

	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tPID\tRETURN CODE")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			info.Name, stateText(info.State, a.Color), intText(info.PID), intText(info.ReturnCode))
	}
	return tw.Flush()
}

func runInfo(ctx context.Context, a *App, args []string) error {
	fs := newFlagSet("info")
	asJSON := fs.Bool("json", false, "output the service info as JSON")
	if err := parseArgs(fs, args, 1, "info <name> [--json]"); err != nil {
		return err
	}

	info, err := a.Manager.Info(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(a.Stdout, info)
	}

	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	rows := [][2]string{
		{"status", stateText(info.State, a.Color)},
		{"pid", intText(info.PID)},
		{"return_code", intText(info.ReturnCode)},
		{"job_label", info.JobLabel},
		{"domain", info.Domain},
		{"service_target", info.ServiceTarget},
		{"config_file", strText(info.ConfigFile)},
		{"output_file", strText(info.OutputFile)},
		{"startup", strconv.FormatBool(info.Startup)},
		{"mainfile", info.MainFile},
	}
	if p := info.Process; p != nil {
		rows = append(rows,
			[2]string{"process", p.Name},
			[2]string{"cmdline", p.Cmdline},
			[2]string{"rss", fmt.Sprintf("%.1f MiB", float64(p.RSSBytes)/(1<<20))},
			[2]string{"cpu", fmt.Sprintf("%.1f%%", p.CPUPercent)},
			[2]string{"started", p.StartedAt.Format("2006-01-02 15:04:05")},
		)
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func stateText(s models.State, color bool) string {
	var text, code string
	switch s {
	case models.StateRunning:
		text, code = "Running", ansiGreen
	case models.StateStopped:
		text, code = "Stopped", ansiRed
	default:
		return "None"
	}
	if !color {
		return text
	}
	return code + text + ansiReset
}

func intText(v *int) string {
	if v == nil {
		return "None"
	}
	return strconv.Itoa(*v)
}

func strText(v *string) string {
	if v == nil {
		return "None"
	}
	return *v
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
