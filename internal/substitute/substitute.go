// Package substitute replaces placeholder tokens in a .docx document tree.
//
// Placeholders may be split across runs by Word's formatting boundaries, so
// matching is done on the paragraph's full text. A paragraph that contains a
// placeholder is rewritten into its first run, which collapses any formatting
// differences inside that paragraph to the first run's style. Paragraphs
// without a placeholder are left exactly as they were.
package substitute

import (
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/lehagrefabien-commits/fatca-application/internal/doctree"
)

// Pair is one placeholder and its replacement.
type Pair struct {
	Key   string
	Value string
}

// Mapping is an ordered list of replacements, applied in sequence.
//
// Order matters only when one key is a substring of another: an earlier
// replacement can consume the characters a later key needed. That case is not
// resolved here.
type Mapping []Pair

// Keys returns the placeholder keys in mapping order.
func (m Mapping) Keys() []string {
	keys := make([]string, len(m))
	for i, p := range m {
		keys[i] = p.Key
	}
	return keys
}

// Apply runs every replacement over s in mapping order and reports whether any
// key was present.
func (m Mapping) Apply(s string) (string, bool) {
	changed := false
	for _, p := range m {
		if strings.Contains(s, p.Key) {
			s = strings.ReplaceAll(s, p.Key, p.Value)
			changed = true
		}
	}
	return s, changed
}

// Paragraph substitutes all mapping keys in p and reports whether p changed.
func Paragraph(p *docx.Paragraph, m Mapping) bool {
	runs := doctree.Runs(p)

	var full strings.Builder
	for _, run := range runs {
		full.WriteString(doctree.RunText(run))
	}

	text, changed := m.Apply(full.String())
	if !changed {
		return false
	}

	if len(runs) == 0 {
		run := &docx.Run{RunProperties: &docx.RunProperties{}}
		doctree.SetRunText(run, text)
		p.Children = append(p.Children, run)
		return true
	}
	for _, run := range runs {
		doctree.SetRunText(run, "")
	}
	doctree.SetRunText(runs[0], text)

	// Runs left with nothing in them are dropped; runs still holding a
	// drawing or similar stay in place.
	kept := p.Children[:0]
	for _, child := range p.Children {
		if run, ok := child.(*docx.Run); ok && run != runs[0] && len(run.Children) == 0 {
			continue
		}
		kept = append(kept, child)
	}
	p.Children = kept
	return true
}

// Document substitutes all mapping keys in every paragraph of doc, including
// paragraphs inside table cells at any nesting depth. It returns the number of
// paragraphs that changed.
func Document(doc *docx.Docx, m Mapping) int {
	n := 0
	doctree.WalkParagraphs(doc, func(p *docx.Paragraph) {
		if Paragraph(p, m) {
			n++
		}
	})
	return n
}
