package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/lehagrefabien-commits/fatca-application/internal/letter"
)

//go:embed pages/*.html
var pageFS embed.FS

var pageNames = []string{"lang_select.html", "context.html", "form.html", "ready.html"}

type langChoice struct {
	Lang   letter.Lang
	Label  string
	Prompt string
}

type pageData struct {
	Lang        letter.Lang
	Title       string
	T           map[string]string
	Context     template.HTML
	Choices     []langChoice
	DownloadURL string
}

var langLabels = map[letter.Lang]string{
	letter.French: "Français",
	letter.Dutch:  "Nederlands",
}

// parsePages parses each page together with the shared layout.
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(pageFS, "pages/layout.html", "pages/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// render buffers the page so a template error still yields a 500.
func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	t, ok := s.pages[name]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("render page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
