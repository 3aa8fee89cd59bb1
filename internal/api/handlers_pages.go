package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lehagrefabien-commits/fatca-application/internal/letter"
)

func (s *Server) handleLangSelect(w http.ResponseWriter, r *http.Request) {
	choices := make([]langChoice, 0, len(letter.Langs))
	for _, lang := range letter.Langs {
		choices = append(choices, langChoice{
			Lang:   lang,
			Label:  langLabels[lang],
			Prompt: s.catalog.Text(lang, "choose_lang"),
		})
	}
	s.render(w, "lang_select.html", pageData{
		Lang:    letter.French,
		Title:   "FATCA",
		Choices: choices,
	})
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	lang, ok := letter.ParseLang(chi.URLParam(r, "lang"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, "context.html", pageData{
		Lang:    lang,
		Title:   s.catalog.Text(lang, "title"),
		T:       s.catalog.Texts(lang),
		Context: s.catalog.ContextHTML(lang),
	})
}

// handleForm serves /fr and /nl; the language is the path itself.
func (s *Server) handleForm(w http.ResponseWriter, r *http.Request) {
	lang, ok := letter.ParseLang(strings.Trim(r.URL.Path, "/"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.render(w, "form.html", pageData{
		Lang:  lang,
		Title: s.catalog.Text(lang, "title"),
		T:     s.catalog.Texts(lang),
	})
}
