package commands

import (
	"fmt"
	"os"

	"svcman/internal/models"
)

// Fatal prints err for the user and exits with its exit code.
func Fatal(err error) {
	msg, code := models.FormatForUser(err)
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
