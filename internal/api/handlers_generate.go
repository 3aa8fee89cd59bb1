package api

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lehagrefabien-commits/fatca-application/internal/letter"
	"github.com/lehagrefabien-commits/fatca-application/internal/output"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// handleGenerate fills the template from the posted form and shows the
// download page.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxFormBytes)
	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "form too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid form: "+err.Error(), http.StatusBadRequest)
		return
	}

	req := letter.FromValues(r.PostForm)
	res, err := s.generator.Generate(r.Context(), req)
	if errors.Is(err, letter.ErrMissingFields) {
		http.Error(w, s.catalog.Text(req.Lang, "missing_fields"), http.StatusBadRequest)
		return
	}
	if err != nil {
		s.log.Error("generate letter",
			"lang", req.Lang,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		http.Error(w, "document generation failed", http.StatusInternalServerError)
		return
	}

	s.render(w, "ready.html", pageData{
		Lang:        req.Lang,
		Title:       s.catalog.Text(req.Lang, "ready_title"),
		T:           s.catalog.Texts(req.Lang),
		DownloadURL: "/download/" + res.Token,
	})
}

// handleDownload streams a generated letter as an attachment.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, info, err := s.downloads.Open(chi.URLParam(r, "token"))
	if errors.Is(err, output.ErrInvalidToken) || errors.Is(err, output.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.log.Error("open download", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": s.cfg.DownloadName,
	}))
	http.ServeContent(w, r, s.cfg.DownloadName, info.ModTime(), f)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
