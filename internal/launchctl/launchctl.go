// Package launchctl is a stateless facade over the launchctl(1) command.
// Each method is one blocking invocation; non-zero exits are reported as
// *models.CommandError naming the step.
package launchctl

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"svcman/internal/models"

	"github.com/sirupsen/logrus"
)

// Label matching modes for Query.
const (
	MatchExact     = "exact"
	MatchSubstring = "substring"
)

// DefaultKillSignal is the signal sent by a hard stop.
const DefaultKillSignal = 9

// Client addresses jobs in the gui/<uid> domain of one user.
type Client struct {
	Path   string
	UID    int
	Match  string
	Runner Runner
	Logger *logrus.Logger
}

// New creates a Client. A nil runner runs the real launchctl.
func New(path string, uid int, match string, runner Runner, logger *logrus.Logger) *Client {
	if path == "" {
		path = "launchctl"
	}
	if match == "" {
		match = MatchExact
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Client{
		Path:   path,
		UID:    uid,
		Match:  match,
		Runner: runner,
		Logger: logger,
	}
}

// Domain is the bootstrap domain of the current GUI session.
func (c *Client) Domain() string {
	return fmt.Sprintf("gui/%d", c.UID)
}

// Target is the service target "<domain>/<label>".
func (c *Client) Target(label string) string {
	return c.Domain() + "/" + label
}

// run executes one launchctl step and converts a non-zero exit into a
// CommandError.
func (c *Client) run(ctx context.Context, step string, args ...string) (Result, error) {
	log := c.Logger.WithFields(logrus.Fields{
		"step": step,
		"args": strings.Join(args, " "),
	})
	log.Debug("running launchctl")

	res, err := c.Runner.Run(ctx, c.Path, args...)
	if err != nil {
		return res, fmt.Errorf("run launchctl %s: %w", step, err)
	}
	if res.ExitCode != 0 {
		log.WithField("exit_code", res.ExitCode).Debugf("launchctl output: %s", strings.TrimSpace(res.Output()))
		return res, &models.CommandError{
			Step:     step,
			Args:     args,
			ExitCode: res.ExitCode,
			Output:   res.Output(),
		}
	}
	return res, nil
}

// Kickstart restarts a registered job in place.
func (c *Client) Kickstart(ctx context.Context, label string) error {
	_, err := c.run(ctx, "kickstart", "kickstart", "-k", c.Target(label))
	return err
}

func (c *Client) Enable(ctx context.Context, label string) error {
	_, err := c.run(ctx, "enable", "enable", c.Target(label))
	return err
}

func (c *Client) Disable(ctx context.Context, label string) error {
	_, err := c.run(ctx, "disable", "disable", c.Target(label))
	return err
}

// Bootstrap loads the descriptor at path into the domain.
func (c *Client) Bootstrap(ctx context.Context, path string) error {
	_, err := c.run(ctx, "bootstrap", "bootstrap", c.Domain(), path)
	return err
}

// Bootout unloads the descriptor at path from the domain.
func (c *Client) Bootout(ctx context.Context, path string) error {
	_, err := c.run(ctx, "bootout", "bootout", c.Domain(), path)
	return err
}

// Kill sends sig to the job's process.
func (c *Client) Kill(ctx context.Context, label string, sig int) error {
	if sig == 0 {
		sig = DefaultKillSignal
	}
	_, err := c.run(ctx, "kill", "kill", strconv.Itoa(sig), c.Target(label))
	return err
}

// Stop asks launchd to stop the job gracefully.
func (c *Client) Stop(ctx context.Context, label string) error {
	_, err := c.run(ctx, "stop", "stop", label)
	return err
}

// Register enables the job then bootstraps its descriptor. A failed
// bootstrap leaves the job enabled.
func (c *Client) Register(ctx context.Context, label, path string) error {
	if err := c.Enable(ctx, label); err != nil {
		return err
	}
	c.Logger.WithField("label", label).Debug("enabled the service")
	return c.Bootstrap(ctx, path)
}

// Unregister disables the job then boots it out. A failed bootout leaves
// the job disabled.
func (c *Client) Unregister(ctx context.Context, label, path string) error {
	if err := c.Disable(ctx, label); err != nil {
		return err
	}
	c.Logger.WithField("label", label).Debug("disabled the service")
	return c.Bootout(ctx, path)
}

// List returns the raw lines of `launchctl list`, header included.
func (c *Client) List(ctx context.Context) ([]string, error) {
	res, err := c.run(ctx, "list", "list")
	if err != nil {
		return nil, err
	}
	out := strings.TrimSpace(res.Stdout)
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Query finds the listing line for label.
func (c *Client) Query(ctx context.Context, label string) (string, bool, error) {
	lines, err := c.List(ctx)
	if err != nil {
		return "", false, err
	}
	line, ok := FindLine(lines, label, c.Match)
	return line, ok, nil
}

// Status queries the job and derives its status tuple.
func (c *Client) Status(ctx context.Context, label string) (models.Status, error) {
	line, found, err := c.Query(ctx, label)
	if err != nil {
		return models.Status{}, err
	}
	return ParseStatus(line, found)
}
