// Package logtail reads, clears and follows the output files of services.
package logtail

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// DefaultTailLines is how many existing lines Follow prints before it
// starts following, like tail -f.
const DefaultTailLines = 10

// ReadLines returns the file's lines without their line terminators.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := []string{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}

// Print copies the file to w. With asJSON the lines are written as an
// indented JSON array instead.
func Print(w io.Writer, path string, asJSON bool) error {
	if asJSON {
		lines, err := ReadLines(path)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "    ")
		return enc.Encode(lines)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(w, f)
	return err
}

// Clear truncates the file, creating it when missing.
func Clear(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

// FollowOptions tune Follow.
type FollowOptions struct {
	// Lines of existing content printed first; 0 uses DefaultTailLines,
	// negative prints nothing.
	Lines int
}

// Follow prints the last lines of path and then everything appended to it
// until ctx is canceled. A truncated file is read again from the start.
func Follow(ctx context.Context, path string, w io.Writer, opts FollowOptions) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	// The directory is watched so that a recreated file is picked up.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", path, err)
	}

	t := &tailer{path: path, w: w}
	n := opts.Lines
	if n == 0 {
		n = DefaultTailLines
	}
	if err := t.start(n); err != nil {
		_ = watcher.Close()
		return err
	}

	sctx := stopper.WithContext(ctx)
	sctx.Defer(func() {
		_ = watcher.Close()
	})

	sctx.Go(func(sctx *stopper.Context) error {
		defer sctx.Stop(100 * time.Millisecond)
		for {
			select {
			case <-sctx.Stopping():
				return nil
			case <-sctx.Done():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					if err := t.catchUp(); err != nil {
						return err
					}
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil && !sctx.IsStopping() {
					return fmt.Errorf("watch %s: %w", path, err)
				}
			}
		}
	})

	return sctx.Wait()
}

type tailer struct {
	path   string
	w      io.Writer
	offset int64
}

// start prints the last n lines and positions the tailer at the end.
func (t *tailer) start(n int) error {
	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	t.offset = size
	if n < 0 || size == 0 {
		return nil
	}

	from, err := tailOffset(f, size, n, tailChunk)
	if err != nil {
		return err
	}
	if _, err := io.Copy(t.w, io.NewSectionReader(f, from, size-from)); err != nil {
		return err
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil {
		return err
	}
	if last[0] != '\n' {
		_, err = io.WriteString(t.w, "\n")
	}
	return err
}

const tailChunk = 4096

// tailOffset scans r backwards in chunk-sized reads and returns the offset
// where the last n lines of its first size bytes begin. A trailing newline
// does not start a line.
func tailOffset(r io.ReaderAt, size int64, n int, chunk int64) (int64, error) {
	end := size
	if end > 0 {
		last := make([]byte, 1)
		if _, err := r.ReadAt(last, end-1); err != nil {
			return 0, err
		}
		if last[0] == '\n' {
			end--
		}
	}

	buf := make([]byte, chunk)
	seen := 0
	for pos := end; pos > 0; {
		lo := pos - chunk
		if lo < 0 {
			lo = 0
		}
		b := buf[:pos-lo]
		if _, err := r.ReadAt(b, lo); err != nil && !errors.Is(err, io.EOF) {
			return 0, err
		}
		for i := len(b) - 1; i >= 0; i-- {
			if b[i] != '\n' {
				continue
			}
			seen++
			if seen == n {
				return lo + int64(i) + 1, nil
			}
		}
		pos = lo
	}
	return 0, nil
}

// catchUp copies everything past the last read offset.
func (t *tailer) catchUp() error {
	f, err := os.Open(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() < t.offset {
		t.offset = 0
	}
	if _, err := f.Seek(t.offset, io.SeekStart); err != nil {
		return err
	}
	n, err := io.Copy(t.w, f)
	t.offset += n
	return err
}
