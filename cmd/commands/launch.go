package commands

import (
	"context"
	"os"

	"svcman/internal/config"
	"svcman/internal/launcher"
	"svcman/internal/models"

	"github.com/sirupsen/logrus"
)

// Launch is the entry point launchd runs for services generated with the
// launcher enabled: `svcman launch <program> [args...]`. It returns the
// program's exit code.
func Launch(ctx context.Context, cfg *config.Config, logger *logrus.Logger, args []string) (int, error) {
	if len(args) == 0 {
		return models.ExitUsage, models.Usage("usage: svcman launch <program> [args...]")
	}
	return launcher.Run(ctx, cfg.Launcher.EnvFile, args, launcher.Stdio{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, logger)
}
