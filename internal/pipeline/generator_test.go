package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fumiama/go-docx"

	"github.com/lehagrefabien-commits/fatca-application/internal/doctree"
	"github.com/lehagrefabien-commits/fatca-application/internal/letter"
	"github.com/lehagrefabien-commits/fatca-application/internal/output"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTemplates struct {
	lines map[letter.Lang][]string
	err   error
}

func (f *fakeTemplates) Open(lang letter.Lang) (*docx.Docx, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc := docx.New()
	for _, l := range f.lines[lang] {
		doc.AddParagraph().AddText(l)
	}
	return doc, nil
}

type memSink struct {
	mu   sync.Mutex
	docs map[string][]byte
	err  error
}

func (m *memSink) Save(doc io.WriterTo) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs == nil {
		m.docs = map[string][]byte{}
	}
	token := "tok-" + string(rune('a'+len(m.docs)))
	m.docs[token] = buf.Bytes()
	return token, nil
}

type fakeTally struct {
	n   int64
	err error
}

func (f *fakeTally) Incr() (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.n++
	return f.n, nil
}

func validRequest(lang letter.Lang) letter.Request {
	return letter.Request{
		Lang:       lang,
		Civility:   letter.Female,
		FirstName:  "Marie",
		LastName:   "Curie",
		Address:    "Rue de la Loi 16",
		PostalCode: "1000",
		City:       "Bruxelles",
		BirthDate:  "07/11/1967",
	}
}

func paragraphs(t *testing.T, data []byte) []string {
	t.Helper()
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	var out []string
	doctree.WalkParagraphs(doc, func(p *docx.Paragraph) {
		out = append(out, doctree.ParagraphText(p))
	})
	return out
}

func newTestGenerator(tpl TemplateSource, sink Sink, tally Tally) *Generator {
	g := NewGenerator(tpl, sink, tally, NewStats(time.Hour), discardLogger())
	g.now = func() time.Time { return time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC) }
	return g
}

func TestGenerate_FillsTemplate(t *testing.T) {
	tpl := &fakeTemplates{lines: map[letter.Lang][]string{
		letter.French: {
			"{{APPEL}},",
			"Je {{SOUSSIGNE}} {{NOM_PRENOM}}, {{NE}} le {{DATE_NAISSANCE}}.",
			"Fait à {{LIEU}}, le {{DATE}}",
			"Sans marqueur",
		},
	}}
	sink := &memSink{}
	tally := &fakeTally{}
	g := newTestGenerator(tpl, sink, tally)

	res, err := g.Generate(context.Background(), validRequest(letter.French))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Paragraphs != 3 {
		t.Errorf("expected 3 changed paragraphs, got %d", res.Paragraphs)
	}
	if res.Count != 1 {
		t.Errorf("expected count=1, got %d", res.Count)
	}

	got := paragraphs(t, sink.docs[res.Token])
	want := []string{
		"Madame, Monsieur,",
		"Je soussignée Marie Curie, née le 07/11/1967.",
		"Fait à Bruxelles, le 09/03/2026",
		"Sans marqueur",
	}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected letter:\n got %q\nwant %q", got, want)
	}

	if snap := g.Stats().Snapshot(); snap.Count != 1 || snap.Failed != 0 {
		t.Errorf("expected one recorded render, got %+v", snap)
	}
}

func TestGenerate_MissingFields(t *testing.T) {
	sink := &memSink{}
	g := newTestGenerator(&fakeTemplates{}, sink, &fakeTally{})

	req := validRequest(letter.French)
	req.City = "  "
	_, err := g.Generate(context.Background(), req)
	if !errors.Is(err, letter.ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if len(sink.docs) != 0 {
		t.Error("nothing should be saved for an invalid request")
	}
	if snap := g.Stats().Snapshot(); snap.Failed != 0 {
		t.Errorf("validation errors are not render failures, got %+v", snap)
	}
}

func TestGenerate_TemplateError(t *testing.T) {
	boom := errors.New("template gone")
	g := newTestGenerator(&fakeTemplates{err: boom}, &memSink{}, &fakeTally{})

	_, err := g.Generate(context.Background(), validRequest(letter.Dutch))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped template error, got %v", err)
	}
	if snap := g.Stats().Snapshot(); snap.Failed != 1 {
		t.Errorf("expected failed=1, got %+v", snap)
	}
}

func TestGenerate_SaveError(t *testing.T) {
	boom := errors.New("disk full")
	tally := &fakeTally{}
	g := newTestGenerator(&fakeTemplates{}, &memSink{err: boom}, tally)

	_, err := g.Generate(context.Background(), validRequest(letter.French))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped save error, got %v", err)
	}
	if tally.n != 0 {
		t.Errorf("counter should not move when nothing was saved, got %d", tally.n)
	}
}

func TestGenerate_CounterFailureIsNotFatal(t *testing.T) {
	sink := &memSink{}
	g := newTestGenerator(&fakeTemplates{}, sink, &fakeTally{err: errors.New("locked")})

	res, err := g.Generate(context.Background(), validRequest(letter.French))
	if err != nil {
		t.Fatalf("expected success despite counter error, got %v", err)
	}
	if res.Count != 0 {
		t.Errorf("expected count=0, got %d", res.Count)
	}
	if _, ok := sink.docs[res.Token]; !ok {
		t.Error("expected letter to be saved")
	}
}

func TestGenerate_CanceledContext(t *testing.T) {
	g := newTestGenerator(&fakeTemplates{}, &memSink{}, &fakeTally{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Generate(ctx, validRequest(letter.French)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerate_WritesToOutputStore(t *testing.T) {
	store, err := output.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	tpl := &fakeTemplates{lines: map[letter.Lang][]string{
		letter.Dutch: {"{{APPEL}}", "Ik, {{SOUSSIGNE}}, {{NE}} te {{VILLE_NAISSANCE}}"},
	}}
	g := newTestGenerator(tpl, store, nil)

	req := validRequest(letter.Dutch)
	req.BirthCity = "Gent"
	res, err := g.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	f, _, err := store.Open(res.Token)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := paragraphs(t, data)
	if got[0] != "Geachte heer, mevrouw" || got[1] != "Ik, ondergetekende, geboren te Gent" {
		t.Errorf("unexpected letter: %q", got)
	}
}
