package logtail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stdout")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPrint(t *testing.T) {
	path := writeLog(t, "one\ntwo\n")

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, path, false))
	assert.Equal(t, "one\ntwo\n", buf.String())
}

func TestPrintJSON(t *testing.T) {
	path := writeLog(t, "one\ntwo\n")

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, path, true))

	var lines []string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &lines))
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestPrintJSONEmptyFile(t *testing.T) {
	path := writeLog(t, "")

	var buf bytes.Buffer
	require.NoError(t, Print(&buf, path, true))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrintMissing(t *testing.T) {
	var buf bytes.Buffer
	err := Print(&buf, filepath.Join(t.TempDir(), "nope"), false)
	assert.True(t, os.IsNotExist(err))
}

func TestClear(t *testing.T) {
	path := writeLog(t, "noise\n")
	require.NoError(t, Clear(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestFollow(t *testing.T) {
	var existing strings.Builder
	for i := 1; i <= 15; i++ {
		fmt.Fprintf(&existing, "line %d\n", i)
	}
	path := writeLog(t, existing.String())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, path, out, FollowOptions{}) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "line 15")
	}, 2*time.Second, 10*time.Millisecond)
	assert.NotContains(t, out.String(), "line 5\n", "only the last lines are replayed")
	assert.Contains(t, out.String(), "line 6\n")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("appended\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "appended")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}

func TestFollowAfterTruncate(t *testing.T) {
	path := writeLog(t, "old line that is fairly long\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, path, out, FollowOptions{Lines: 1}) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "old line")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("new\n"), 0o644))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "new\n")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestTailOffset(t *testing.T) {
	cases := []struct {
		content string
		n       int
		want    string
	}{
		{"a\nb\nc\n", 2, "b\nc\n"},
		{"a\nb\nc", 2, "b\nc"},
		{"a\nb\nc\n", 10, "a\nb\nc\n"},
		{"a\n\n\nb\n", 2, "\nb\n"},
		{"only", 1, "only"},
		{"\n", 1, "\n"},
	}
	for _, tc := range cases {
		for _, chunk := range []int64{1, 2, 3, 4096} {
			r := strings.NewReader(tc.content)
			off, err := tailOffset(r, int64(len(tc.content)), tc.n, chunk)
			require.NoError(t, err)
			assert.Equal(t, tc.want, tc.content[off:], "content %q n=%d chunk=%d", tc.content, tc.n, chunk)
		}
	}
}

func TestFollowLargeFilePrintsTail(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&b, "line %d %s\n", i, strings.Repeat("x", i%97))
	}
	path := writeLog(t, b.String())

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- Follow(ctx, path, out, FollowOptions{Lines: 3}) }()

	want := fmt.Sprintf("line 4997 %s\nline 4998 %s\nline 4999 %s\n",
		strings.Repeat("x", 4997%97), strings.Repeat("x", 4998%97), strings.Repeat("x", 4999%97))
	require.Eventually(t, func() bool { return out.String() == want }, 2*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
