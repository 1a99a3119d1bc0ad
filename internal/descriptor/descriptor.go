// Package descriptor builds, encodes and validates launchd job descriptors
// (property lists). Descriptors are assembled from typed fields and
// marshaled, so names and paths never need escaping.
package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"svcman/internal/models"

	"github.com/google/renameio/v2"
	"howett.net/plist"
)

// OutputDir is the directory, next to the entry point, that receives the
// job's stdout and stderr.
const OutputDir = ".output"

// LaunchCommand is the launcher subcommand placed in ProgramArguments.
const LaunchCommand = "launch"

// RequiredKeys are checked in this order; the first absent key is reported.
var RequiredKeys = []string{
	"Label",
	"Program",
	"RunAtLoad",
	"StandardOutPath",
	"StandardErrorPath",
	"WorkingDirectory",
}

// Descriptor is the subset of launchd.plist(5) svcman reads and writes.
type Descriptor struct {
	Label                string            `plist:"Label"`
	Program              string            `plist:"Program"`
	ProgramArguments     []string          `plist:"ProgramArguments,omitempty"`
	WorkingDirectory     string            `plist:"WorkingDirectory"`
	StandardOutPath      string            `plist:"StandardOutPath"`
	StandardErrorPath    string            `plist:"StandardErrorPath"`
	RunAtLoad            bool              `plist:"RunAtLoad"`
	EnvironmentVariables map[string]string `plist:"EnvironmentVariables,omitempty"`
}

// Params are the inputs of a generated descriptor.
type Params struct {
	EntryPoint   string
	Name         string
	Domain       string
	LauncherPath string // empty runs EntryPoint directly
	Env          map[string]string
}

// Build assembles the descriptor for a registered service.
func Build(p Params) Descriptor {
	dir := filepath.Dir(p.EntryPoint)
	d := Descriptor{
		Label:             JobLabel(p.Domain, p.Name),
		Program:           p.EntryPoint,
		WorkingDirectory:  dir,
		StandardOutPath:   filepath.Join(dir, OutputDir, "stdout"),
		StandardErrorPath: filepath.Join(dir, OutputDir, "stderr"),
		RunAtLoad:         true,
	}
	if p.LauncherPath != "" {
		d.Program = p.LauncherPath
		d.ProgramArguments = []string{p.LauncherPath, LaunchCommand, p.EntryPoint}
	}
	if len(p.Env) > 0 {
		d.EnvironmentVariables = make(map[string]string, len(p.Env))
		for k, v := range p.Env {
			d.EnvironmentVariables[k] = v
		}
	}
	return d
}

// Render builds and encodes the descriptor for entryPoint.
func Render(entryPoint, name, domain, launcherPath string) ([]byte, error) {
	return Marshal(Build(Params{
		EntryPoint:   entryPoint,
		Name:         name,
		Domain:       domain,
		LauncherPath: launcherPath,
	}))
}

// JobLabel is the dotted label launchd addresses the job by.
func JobLabel(domain, name string) string {
	if domain == "" {
		return name
	}
	return domain + "." + name
}

// MainFile returns the script the descriptor ultimately runs, looking
// through the launcher when one is used.
func (d Descriptor) MainFile() string {
	args := d.ProgramArguments
	if len(args) >= 3 && args[1] == LaunchCommand {
		return args[len(args)-1]
	}
	return d.Program
}

// Marshal encodes d as an XML property list.
func Marshal(d Descriptor) ([]byte, error) {
	data, err := plist.MarshalIndent(d, plist.XMLFormat, "\t")
	if err != nil {
		return nil, fmt.Errorf("encode descriptor %s: %w", d.Label, err)
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	return data, nil
}

// Parse decodes and validates a descriptor. On a missing required key it
// returns *models.MissingFieldError and a zero Descriptor.
func Parse(data []byte) (Descriptor, error) {
	var raw map[string]any
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return Descriptor{}, fmt.Errorf("decode descriptor: %w", err)
	}
	for _, key := range RequiredKeys {
		if _, ok := raw[key]; !ok {
			return Descriptor{}, &models.MissingFieldError{Field: key}
		}
	}

	var d Descriptor
	if _, err := plist.Unmarshal(data, &d); err != nil {
		return Descriptor{}, fmt.Errorf("decode descriptor: %w", err)
	}
	return d, nil
}

// ReadFile parses the descriptor stored at path.
func ReadFile(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, err
	}
	d, err := Parse(data)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// WriteFile atomically stores d at path and creates the log directory so
// launchd can open StandardOutPath.
func WriteFile(path string, d Descriptor) error {
	data, err := Marshal(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create descriptor dir: %w", err)
	}
	if d.StandardOutPath != "" {
		if err := os.MkdirAll(filepath.Dir(d.StandardOutPath), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write descriptor: %w", err)
	}
	return nil
}

// Label reads the job label from the descriptor at path, falling back when
// the file does not exist. Imported descriptors may carry a label that does
// not follow <domain>.<name>.
func Label(path, fallback string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}

	var head struct {
		Label string `plist:"Label"`
	}
	if _, err := plist.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("decode descriptor %s: %w", path, err)
	}
	if head.Label == "" {
		return fallback, nil
	}
	return head.Label, nil
}

// SplitLabel derives a registry name from an imported label: the last
// dotted component when the rest equals domain, else the whole label.
func SplitLabel(label, domain string) string {
	i := strings.LastIndexByte(label, '.')
	if i < 0 {
		return label
	}
	if label[:i] != domain {
		return label
	}
	return label[i+1:]
}
