// Package logtail reads and follows the bot's append-only log file.
package logtail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

const chunkSize = 64 * 1024

// Tail returns the last n lines of the file at path, without trailing newlines.
// A missing file yields no lines and no error: the session may not have
// written anything yet.
func Tail(path string, n int) ([]string, int64, error) {
	f, err := os.Open(path) //nolint:gosec // G304: log path comes from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("opening log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log: %w", err)
	}
	size := info.Size()
	if n <= 0 || size == 0 {
		return nil, size, nil
	}

	// Read backwards until the buffer holds more than n newlines or the file start.
	var buf []byte
	pos := size
	for pos > 0 && bytes.Count(buf, []byte{'\n'}) <= n {
		readSize := int64(chunkSize)
		if pos < readSize {
			readSize = pos
		}
		pos -= readSize
		chunk := make([]byte, readSize)
		if _, err := f.ReadAt(chunk, pos); err != nil && !errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("reading log: %w", err)
		}
		buf = append(chunk, buf...)
	}

	lines := bytes.Split(bytes.TrimSuffix(buf, []byte{'\n'}), []byte{'\n'})
	if pos > 0 {
		// First line is a fragment of a longer line.
		lines = lines[1:]
	}
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = string(l)
	}
	return out, size, nil
}

// Follow copies data appended to path after offset into w until ctx is done.
// Truncation restarts from the beginning; removal and re-creation of the
// file are picked up when the new file appears.
func Follow(ctx context.Context, path string, offset int64, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory so creation of a missing or replaced log is seen.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	f := &follower{path: path, offset: offset, w: w}
	defer f.close()

	if err := f.drain(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				f.close()
				f.offset = 0
				continue
			}
			if event.Has(fsnotify.Create) {
				f.close()
				f.offset = 0
			}
			if err := f.drain(); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watching log: %w", err)
		}
	}
}

type follower struct {
	path   string
	file   *os.File
	offset int64
	w      io.Writer
}

func (f *follower) close() {
	if f.file != nil {
		_ = f.file.Close()
		f.file = nil
	}
}

// drain writes everything between the saved offset and the current end of file.
func (f *follower) drain() error {
	if f.file == nil {
		file, err := os.Open(f.path) //nolint:gosec // G304: log path comes from config
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("opening log: %w", err)
		}
		f.file = file
	}

	info, err := f.file.Stat()
	if err != nil {
		return fmt.Errorf("stat log: %w", err)
	}
	if info.Size() < f.offset {
		f.offset = 0
	}
	if info.Size() == f.offset {
		return nil
	}

	n, err := io.Copy(f.w, io.NewSectionReader(f.file, f.offset, info.Size()-f.offset))
	f.offset += n
	if err != nil {
		return fmt.Errorf("copying log: %w", err)
	}
	return nil
}
