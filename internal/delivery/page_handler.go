package delivery

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type pageData struct {
	ProcessURL string
	AudioField string
}

type PageHandler struct {
	log *logger.ZapLogger
}

func NewPageHandler(log *logger.ZapLogger) *PageHandler {
	return &PageHandler{log: log}
}

// Index — GET /: страница с записью голоса.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := indexTmpl.Execute(&buf, pageData{
		ProcessURL: processAudioPath,
		AudioField: audioField,
	})
	if err != nil {
		h.log.Log(logger.LogEntry{Level: "error", Message: "render index", Service: serviceName, Error: err})
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
