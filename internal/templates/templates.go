// Package templates loads the Word letter templates, one per language.
package templates

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fumiama/go-docx"
	"github.com/lehagrefabien-commits/fatca-application/internal/letter"
	"github.com/lehagrefabien-commits/fatca-application/internal/substitute"
)

// ErrTemplateNotFound is returned when a language has no template file.
var ErrTemplateNotFound = errors.New("template not found")

// Filename returns the template file name for lang.
func Filename(lang letter.Lang) string {
	return "template_" + string(lang) + ".docx"
}

// Store caches template bytes and hands out a freshly parsed document per call.
type Store struct {
	dir   string
	files map[letter.Lang][]byte
}

// NewStore reads the template for every language from dir.
func NewStore(dir string, langs ...letter.Lang) (*Store, error) {
	s := &Store{dir: dir, files: make(map[letter.Lang][]byte, len(langs))}
	for _, lang := range langs {
		path := filepath.Join(dir, Filename(lang))
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
		}
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", path, err)
		}
		s.files[lang] = data
	}
	return s, nil
}

// Open parses a new document from the cached template for lang.
func (s *Store) Open(lang letter.Lang) (*docx.Docx, error) {
	data, ok := s.files[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, Filename(lang))
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", Filename(lang), err)
	}
	return doc, nil
}

// Placeholders lists the tokens present in the template for lang.
func (s *Store) Placeholders(lang letter.Lang) ([]string, error) {
	doc, err := s.Open(lang)
	if err != nil {
		return nil, err
	}
	return substitute.Placeholders(doc), nil
}

// Validate checks that every template placeholder is covered by vocab.
func (s *Store) Validate(vocab []string) error {
	for _, lang := range letter.Langs {
		if _, ok := s.files[lang]; !ok {
			continue
		}
		found, err := s.Placeholders(lang)
		if err != nil {
			return err
		}
		if err := substitute.Check(found, vocab); err != nil {
			return fmt.Errorf("template %s: %w", Filename(lang), err)
		}
	}
	return nil
}

// LoadFile parses a single .docx file from disk. The whole file is read into
// memory because the parsed document keeps reading from its source when it is
// written back out.
func LoadFile(path string) (*docx.Docx, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx %s: %w", path, err)
	}
	return doc, nil
}
