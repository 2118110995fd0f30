package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/pkg/version"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type indexCategory struct {
	Name     string
	Symptoms []string
}

type indexData struct {
	Version    string
	Categories []indexCategory
	Browsers   []string
	Networks   []string
}

// Index renders the landing page listing the symptom vocabulary.
func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	vocab := h.diagnoser.Symptoms()
	data := indexData{
		Version:  version.Version,
		Browsers: h.whitelist.Browsers,
		Networks: h.whitelist.Connections,
	}
	for _, c := range model.Categories() {
		data.Categories = append(data.Categories, indexCategory{Name: c, Symptoms: vocab[c]})
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("rendering index", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
