// Package catalog holds the bilingual interface text.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"

	"github.com/lehagrefabien-commits/fatca-application/internal/letter"
	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var source []byte

type entry struct {
	Texts   map[string]string `yaml:"texts"`
	Context string            `yaml:"context"`
}

// Catalog is the parsed text table.
type Catalog struct {
	texts   map[letter.Lang]map[string]string
	context map[letter.Lang]template.HTML
}

// Load parses the embedded catalog and renders each context blurb.
func Load() (*Catalog, error) {
	return parse(source)
}

func parse(src []byte) (*Catalog, error) {
	var raw map[string]entry
	if err := yaml.Unmarshal(src, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{
		texts:   make(map[letter.Lang]map[string]string),
		context: make(map[letter.Lang]template.HTML),
	}
	md := goldmark.New()
	for _, lang := range letter.Langs {
		e, ok := raw[string(lang)]
		if !ok {
			return nil, fmt.Errorf("catalog: missing language %q", lang)
		}
		var buf bytes.Buffer
		if err := md.Convert([]byte(e.Context), &buf); err != nil {
			return nil, fmt.Errorf("render %s context: %w", lang, err)
		}
		c.texts[lang] = e.Texts
		// goldmark escapes raw HTML by default, so the output is safe to embed.
		c.context[lang] = template.HTML(buf.String())
	}
	return c, nil
}

// Texts returns the UI strings for lang.
func (c *Catalog) Texts(lang letter.Lang) map[string]string {
	return c.texts[lang]
}

// Text returns one UI string, or the key itself when it is missing.
func (c *Catalog) Text(lang letter.Lang, key string) string {
	if s, ok := c.texts[lang][key]; ok {
		return s
	}
	return key
}

// ContextHTML returns the rendered context blurb for lang.
func (c *Catalog) ContextHTML(lang letter.Lang) template.HTML {
	return c.context[lang]
}
