package system

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// SavePath stores the PATH value in the env file so background jobs can
// run with the operator's PATH. Unchanged values are not rewritten.
func SavePath(envFile, path string) error {
	if cur, err := os.ReadFile(envFile); err == nil && strings.TrimSpace(string(cur)) == path {
		return nil
	}
	if err := EnsureDir(filepath.Dir(envFile)); err != nil {
		return err
	}
	if err := renameio.WriteFile(envFile, []byte(path+"\n"), 0o600); err != nil {
		return fmt.Errorf("save PATH: %w", err)
	}
	return nil
}

// LoadPath reads the PATH value saved by SavePath.
func LoadPath(envFile string) (string, error) {
	data, err := os.ReadFile(envFile)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(data)), nil
}
