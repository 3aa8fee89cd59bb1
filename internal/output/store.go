// Package output stores generated letters until they are downloaded or expire.
package output

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const ext = ".docx"

var (
	// ErrInvalidToken is returned for tokens that are not UUIDs.
	ErrInvalidToken = errors.New("invalid download token")
	// ErrNotFound is returned when no file exists for a token.
	ErrNotFound = errors.New("generated file not found")
)

// Store keeps generated files in a single directory, named by token.
type Store struct {
	dir string
}

// NewStore creates dir if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes doc under a new random token. The file appears atomically.
func (s *Store) Save(doc io.WriterTo) (string, error) {
	token := uuid.NewString()

	tmp, err := os.CreateTemp(s.dir, ".pending-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := doc.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path(token)); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename output: %w", err)
	}
	return token, nil
}

// Open returns the stored file for token. The caller closes it.
func (s *Store) Open(token string) (*os.File, os.FileInfo, error) {
	id, err := uuid.Parse(token)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	f, err := os.Open(s.path(id.String()))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat output: %w", err)
	}
	return f, info, nil
}

// Sweep removes stored files and abandoned temp files older than maxAge.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read output dir: %w", err)
	}
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !(strings.HasSuffix(name, ext) || strings.HasPrefix(name, ".pending-")) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(s.dir, name)); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func (s *Store) path(token string) string {
	return filepath.Join(s.dir, token+ext)
}
