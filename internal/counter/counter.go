// Package counter keeps a durable count of generated letters in a small text
// file. Updates are serialized with a mutex inside the process and an advisory
// file lock across processes, and the file is replaced atomically.
package counter

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Counter is a monotonically increasing, file-backed count.
type Counter struct {
	mu   sync.Mutex
	path string
}

// Open returns a counter stored at path, creating the parent directory.
func Open(path string) (*Counter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create counter dir: %w", err)
	}
	return &Counter{path: path}, nil
}

// Incr adds one to the count and returns the new value.
func (c *Counter) Incr() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	unlock, err := lockFile(c.path+".lock", true)
	if err != nil {
		return 0, err
	}
	defer unlock()

	n, err := c.read()
	if err != nil {
		return 0, err
	}
	n++
	if err := c.write(n); err != nil {
		return 0, err
	}
	return n, nil
}

// Value returns the current count.
func (c *Counter) Value() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	unlock, err := lockFile(c.path+".lock", false)
	if err != nil {
		return 0, err
	}
	defer unlock()

	return c.read()
}

func (c *Counter) read() (int64, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0, nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %s: %w", c.path, err)
	}
	return n, nil
}

func (c *Counter) write(n int64) error {
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".counter-*")
	if err != nil {
		return fmt.Errorf("create temp counter: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(strconv.FormatInt(n, 10) + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write counter: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync counter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close counter: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace counter: %w", err)
	}
	return nil
}
