package substitute

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/fumiama/go-docx"
	"github.com/lehagrefabien-commits/fatca-application/internal/doctree"
)

var placeholderRe = regexp.MustCompile(`\{\{[A-Z0-9_]+\}\}`)

// Placeholders returns the sorted set of {{UPPER_SNAKE}} tokens found in doc.
func Placeholders(doc *docx.Docx) []string {
	seen := make(map[string]bool)
	doctree.WalkParagraphs(doc, func(p *docx.Paragraph) {
		for _, tok := range placeholderRe.FindAllString(doctree.ParagraphText(p), -1) {
			seen[tok] = true
		}
	})
	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// UnmappedError lists template placeholders that no mapping key covers.
type UnmappedError struct {
	Placeholders []string
}

func (e *UnmappedError) Error() string {
	return fmt.Sprintf("unmapped placeholders: %s", strings.Join(e.Placeholders, ", "))
}

// Check verifies that every placeholder has a key in keys. Extra keys are fine.
func Check(placeholders, keys []string) error {
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	var missing []string
	for _, ph := range placeholders {
		if !known[ph] {
			missing = append(missing, ph)
		}
	}
	if len(missing) > 0 {
		return &UnmappedError{Placeholders: missing}
	}
	return nil
}
