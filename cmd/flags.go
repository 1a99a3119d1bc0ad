package cmd

import (
	"svcman/internal/models"

	"github.com/spf13/pflag"
)

// parseGlobalFlags parses the flags that precede the command. Parsing stops
// at the first positional argument so each command owns its own flags.
func parseGlobalFlags(args []string) (models.FlagConfig, []string, bool, error) {
	cfg := models.DefaultFlagConfig

	fs := pflag.NewFlagSet("svcman", pflag.ContinueOnError)
	fs.SetInterspersed(false)
	fs.Usage = func() {}
	fs.CountVarP(&cfg.Verbosity, "verbose", "v", "increase verbosity (-v info, -vv debug)")
	fs.StringVar(&cfg.ConfigPath, "config", "", "config file (default <home>/config.yaml)")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "disable coloured output")
	help := fs.BoolP("help", "h", false, "show help")

	if err := fs.Parse(args); err != nil {
		return cfg, nil, false, models.Usage("%v", err)
	}
	if cfg.Verbosity > 2 {
		cfg.Verbosity = 2
	}
	return cfg, fs.Args(), *help, nil
}
