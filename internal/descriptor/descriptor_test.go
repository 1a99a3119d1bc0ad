package descriptor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"svcman/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>org.example.backup</string>
	<key>Program</key>
	<string>/opt/backup/run.sh</string>
	<key>RunAtLoad</key>
	<true/>
	<key>StandardOutPath</key>
	<string>/opt/backup/.output/stdout</string>
	<key>StandardErrorPath</key>
	<string>/opt/backup/.output/stderr</string>
	<key>WorkingDirectory</key>
	<string>/opt/backup</string>
	<key>KeepAlive</key>
	<true/>
</dict>
</plist>
`

func TestRenderParseRoundTrip(t *testing.T) {
	data, err := Render("/a/b/run.py", "svc", "com.x", "")
	require.NoError(t, err)

	d, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "com.x.svc", d.Label)
	assert.Equal(t, "/a/b/run.py", d.Program)
	assert.Equal(t, "/a/b", d.WorkingDirectory)
	assert.Equal(t, "/a/b/.output/stdout", d.StandardOutPath)
	assert.Equal(t, "/a/b/.output/stderr", d.StandardErrorPath)
	assert.True(t, d.RunAtLoad)
	assert.Empty(t, d.ProgramArguments)
}

func TestRenderWithLauncher(t *testing.T) {
	data, err := Render("/a/b/run.py", "svc", "com.x", "/usr/local/bin/svcman")
	require.NoError(t, err)

	d, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/svcman", d.Program)
	assert.Equal(t, []string{"/usr/local/bin/svcman", "launch", "/a/b/run.py"}, d.ProgramArguments)
	assert.Equal(t, "/a/b/run.py", d.MainFile())
	assert.Equal(t, "/a/b", d.WorkingDirectory)
}

func TestRenderSpecialCharacters(t *testing.T) {
	entry := "/tmp/a&b <c>/{SERVICE_NAME}.py"
	data, err := Render(entry, "we<ird>&name", "com.x", "")
	require.NoError(t, err)

	d, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, entry, d.Program)
	assert.Equal(t, "com.x.we<ird>&name", d.Label)
}

func TestParseMissingField(t *testing.T) {
	for _, key := range RequiredKeys {
		t.Run(key, func(t *testing.T) {
			data := removeKey(t, fullPlist, key)

			d, err := Parse(data)
			var missing *models.MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, key, missing.Field)
			assert.Equal(t, Descriptor{}, d)
		})
	}
}

func TestParseReportsFirstMissingField(t *testing.T) {
	data := removeKey(t, fullPlist, "WorkingDirectory")
	data = removeKey(t, string(data), "RunAtLoad")

	_, err := Parse(data)
	var missing *models.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "RunAtLoad", missing.Field)
}

func TestParseForeignDescriptor(t *testing.T) {
	d, err := Parse([]byte(fullPlist))
	require.NoError(t, err)
	assert.Equal(t, "org.example.backup", d.Label)
	assert.Equal(t, "/opt/backup/run.sh", d.MainFile())
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse([]byte("not a plist"))
	require.Error(t, err)
}

func TestWriteFileCreatesOutputDir(t *testing.T) {
	root := t.TempDir()
	entry := filepath.Join(root, "app", "run.py")
	path := filepath.Join(root, "descriptors", "app.plist")

	d := Build(Params{EntryPoint: entry, Name: "app", Domain: "com.x"})
	require.NoError(t, WriteFile(path, d))

	assert.DirExists(t, filepath.Join(root, "app", OutputDir))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestLabel(t *testing.T) {
	dir := t.TempDir()

	label, err := Label(filepath.Join(dir, "missing.plist"), "com.x.svc")
	require.NoError(t, err)
	assert.Equal(t, "com.x.svc", label)

	path := filepath.Join(dir, "backup.plist")
	require.NoError(t, os.WriteFile(path, []byte(fullPlist), 0o644))
	label, err = Label(path, "com.x.backup")
	require.NoError(t, err)
	assert.Equal(t, "org.example.backup", label)
}

func TestSplitLabel(t *testing.T) {
	tests := []struct {
		label, domain, want string
	}{
		{"com.x.svc", "com.x", "svc"},
		{"org.example.backup", "com.x", "org.example.backup"},
		{"plain", "com.x", "plain"},
		{"com.x.y.z", "com.x.y", "z"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLabel(tt.label, tt.domain), tt.label)
	}
}

// removeKey drops a <key>/<value> pair from the fixture.
func removeKey(t *testing.T, doc, key string) []byte {
	t.Helper()
	lines := strings.Split(doc, "\n")
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "<key>"+key+"</key>" {
			i++ // skip the value line
			continue
		}
		out = append(out, lines[i])
	}
	require.Less(t, len(out), len(lines), "key %s not in fixture", key)
	return []byte(strings.Join(out, "\n"))
}
