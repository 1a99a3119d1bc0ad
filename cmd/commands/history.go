package commands

import (
	"fmt"
	"text/tabwriter"

	"svcman/internal/system"
)

func runHistory(a *App, args []string) error {
	fs := newFlagSet("history")
	limit := fs.Int("limit", 20, "number of entries to show (0 for all)")
	asJSON := fs.Bool("json", false, "output the history as JSON")
	const usage = "history [name] [--limit N] [--json]"
	if err := parseArgs(fs, args, -1, usage); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return usageError(fs, usage, "too many arguments")
	}

	entries, err := a.Manager.History(fs.Arg(0), *limit)
	if err != nil {
		return err
	}
	if *asJSON {
		if entries == nil {
			entries = []system.HistoryEntry{}
		}
		return writeJSON(a.Stdout, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(a.Stdout, "no history recorded")
		return nil
	}

	tw := tabwriter.NewWriter(a.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSERVICE\tACTION\tRESULT\tDETAIL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Service, e.Action, e.Result, e.Detail)
	}
	return tw.Flush()
}
