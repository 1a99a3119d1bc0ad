package launchctl

import (
	"fmt"
	"strconv"
	"strings"

	"svcman/internal/models"
)

// FindLine returns the first listing line whose label matches. In exact mode
// the third tab-separated field must equal label; in substring mode any line
// containing label matches, so "web" also finds "com.x.webhook".
func FindLine(lines []string, label, match string) (string, bool) {
	for _, line := range lines {
		if match == MatchSubstring {
			if strings.Contains(line, label) {
				return line, true
			}
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		if strings.TrimSpace(fields[2]) == label {
			return line, true
		}
	}
	return "", false
}

// ParseStatus derives the status tuple from a `pid \t exit \t label` line.
func ParseStatus(line string, found bool) (models.Status, error) {
	if !found {
		return models.Status{State: models.StateUnregistered}, nil
	}

	fields := strings.Split(strings.TrimSpace(line), "\t")
	if len(fields) < 3 {
		return models.Status{}, fmt.Errorf("malformed launchctl list line %q", line)
	}

	pidField := strings.TrimSpace(fields[0])
	exitField := strings.TrimSpace(fields[1])

	st := models.Status{State: models.StateStopped}
	if exitField != "-" {
		code, err := strconv.Atoi(exitField)
		if err != nil {
			return models.Status{}, fmt.Errorf("parse exit status %q: %w", exitField, err)
		}
		st.LastExitCode = &code
	}

	if pidField == "-" {
		return st, nil
	}

	pid, err := strconv.Atoi(pidField)
	if err != nil {
		return models.Status{}, fmt.Errorf("parse pid %q: %w", pidField, err)
	}
	st.State = models.StateRunning
	st.PID = &pid
	return st, nil
}
