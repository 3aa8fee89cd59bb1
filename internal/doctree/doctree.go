// Package doctree gives text-level access to the paragraph, run and table tree
// of a parsed .docx document.
package doctree

import (
	"strings"

	"github.com/fumiama/go-docx"
)

// Runs returns the runs of a paragraph in document order. Children that are
// not runs (hyperlinks, bookmarks, ...) are skipped.
func Runs(p *docx.Paragraph) []*docx.Run {
	var runs []*docx.Run
	for _, child := range p.Children {
		if run, ok := child.(*docx.Run); ok {
			runs = append(runs, run)
		}
	}
	return runs
}

// RunText returns the visible text of a run. Tabs read as "\t" and line
// breaks as "\n".
func RunText(run *docx.Run) string {
	var buf strings.Builder
	for _, rc := range run.Children {
		switch c := rc.(type) {
		case *docx.Text:
			buf.WriteString(c.Text)
		case *docx.Tab:
			buf.WriteByte('\t')
		case *docx.BarterRabbet:
			buf.WriteByte('\n')
		}
	}
	return buf.String()
}

// SetRunText replaces the text of a run. Text children are dropped and the new
// text is written in their place; formatting and non-text children such as
// drawings are kept.
func SetRunText(run *docx.Run, text string) {
	kept := make([]interface{}, 0, len(run.Children)+1)
	for _, rc := range run.Children {
		switch rc.(type) {
		case *docx.Text, *docx.Tab, *docx.BarterRabbet:
			continue
		}
		kept = append(kept, rc)
	}
	run.Children = append(kept, textChildren(text)...)
}

// textChildren mirrors docx.Paragraph.AddText: "\n" becomes a break and "\t" a tab.
func textChildren(text string) []interface{} {
	var c []interface{}
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			c = append(c, &docx.BarterRabbet{})
		}
		for j, seg := range strings.Split(line, "\t") {
			if j > 0 {
				c = append(c, &docx.Tab{})
			}
			if seg == "" {
				continue
			}
			t := &docx.Text{Text: seg}
			if strings.TrimSpace(seg) != seg {
				t.XMLSpace = "preserve"
			}
			c = append(c, t)
		}
	}
	return c
}

// ParagraphText concatenates the text of all runs of a paragraph.
func ParagraphText(p *docx.Paragraph) string {
	var buf strings.Builder
	for _, run := range Runs(p) {
		buf.WriteString(RunText(run))
	}
	return buf.String()
}

// WalkParagraphs calls fn for every paragraph reachable from the document body:
// top-level paragraphs first in body order, and for each table every paragraph
// of every cell, descending into nested tables.
func WalkParagraphs(doc *docx.Docx, fn func(*docx.Paragraph)) {
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			fn(it)
		case *docx.Table:
			walkTable(it, fn)
		}
	}
}

func walkTable(t *docx.Table, fn func(*docx.Paragraph)) {
	for _, row := range t.TableRows {
		for _, cell := range row.TableCells {
			for _, p := range cell.Paragraphs {
				fn(p)
			}
			for _, nested := range cell.Tables {
				walkTable(nested, fn)
			}
		}
	}
}
