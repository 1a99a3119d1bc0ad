package system

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates dir, private to the user, if it does not already exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil { // 0o700 private to the user
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// Exists reports whether path exists. Stat errors other than "not exist"
// count as existing so callers do not overwrite what they cannot inspect.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// Executable returns the absolute path of the running svcman binary.
func Executable() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

// IsRoot reports whether the process runs with root privileges.
func IsRoot() bool {
	return os.Geteuid() == 0
}
