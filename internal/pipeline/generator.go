// Package pipeline turns a letter request into a stored .docx file.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fumiama/go-docx"

	"github.com/lehagrefabien-commits/fatca-application/internal/letter"
	"github.com/lehagrefabien-commits/fatca-application/internal/substitute"
)

// TemplateSource yields a fresh, mutable document per language.
type TemplateSource interface {
	Open(lang letter.Lang) (*docx.Docx, error)
}

// Sink stores a rendered document and returns its download token.
type Sink interface {
	Save(doc io.WriterTo) (string, error)
}

// Tally counts generated letters.
type Tally interface {
	Incr() (int64, error)
}

// Result describes one generated letter.
type Result struct {
	Token      string
	Count      int64
	Paragraphs int
}

// Generator renders letters from templates.
type Generator struct {
	templates TemplateSource
	sink      Sink
	tally     Tally
	stats     *Stats
	log       *slog.Logger
	now       func() time.Time
}

func NewGenerator(templates TemplateSource, sink Sink, tally Tally, stats *Stats, log *slog.Logger) *Generator {
	if stats == nil {
		stats = NewStats(time.Hour)
	}
	return &Generator{
		templates: templates,
		sink:      sink,
		tally:     tally,
		stats:     stats,
		log:       log,
		now:       time.Now,
	}
}

// Stats returns the render statistics.
func (g *Generator) Stats() *Stats {
	return g.stats
}

// Generate validates req, fills the template for its language and stores the
// result. Validation errors are returned unwrapped.
func (g *Generator) Generate(ctx context.Context, req letter.Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	log := g.log.With("lang", req.Lang)
	start := time.Now()

	doc, err := g.templates.Open(req.Lang)
	if err != nil {
		g.stats.RecordFailure()
		return Result{}, fmt.Errorf("open template: %w", err)
	}

	changed := substitute.Document(doc, req.Mapping(g.now()))

	token, err := g.sink.Save(doc)
	if err != nil {
		g.stats.RecordFailure()
		return Result{}, fmt.Errorf("save letter: %w", err)
	}

	res := Result{Token: token, Paragraphs: changed}
	if g.tally != nil {
		n, err := g.tally.Incr()
		if err != nil {
			// The file exists; a lost count is not worth failing the request.
			log.Warn("counter update failed", "error", err)
		} else {
			res.Count = n
		}
	}

	elapsed := time.Since(start)
	g.stats.Record(elapsed)
	log.Info("letter generated",
		"paragraphs", changed,
		"count", res.Count,
		"duration_ms", elapsed.Milliseconds(),
	)
	return res, nil
}
