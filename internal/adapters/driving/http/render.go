package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"net/http"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer turns page views and errors into HTML
type Renderer interface {
	RenderPage(w io.Writer, view *domain.PageView) error
	RenderError(w io.Writer, status int, message string) error
}

// TemplateRenderer renders the chat widget shell with html/template.
// The widget script reads its session id and seeded history from data
// attributes on the root element.
type TemplateRenderer struct {
	tmpl *template.Template
}

// NewTemplateRenderer parses the embedded templates
func NewTemplateRenderer() *TemplateRenderer {
	return &TemplateRenderer{
		tmpl: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

type pageData struct {
	URL          string
	SessionID    string
	Messages     []domain.Message
	MessagesJSON string
	Indexed      bool
	IndexOutcome string
}

type errorData struct {
	Status  int
	Title   string
	Message string
}

// RenderPage writes the chat page for view
func (t *TemplateRenderer) RenderPage(w io.Writer, view *domain.PageView) error {
	msgs := view.InitialMessages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return err
	}

	return t.tmpl.ExecuteTemplate(w, "page.html", pageData{
		URL:          view.URL,
		SessionID:    view.SessionID,
		Messages:     msgs,
		MessagesJSON: string(encoded),
		Indexed:      view.Indexed(),
		IndexOutcome: string(view.IndexOutcome),
	})
}

// RenderError writes an error page
func (t *TemplateRenderer) RenderError(w io.Writer, status int, message string) error {
	title := http.StatusText(status)
	if title == "" {
		title = "Error"
	}
	return t.tmpl.ExecuteTemplate(w, "error.html", errorData{
		Status:  status,
		Title:   title,
		Message: message,
	})
}

// writeHTML renders into a buffer first so a template failure never leaves
// a half-written page behind.
func (s *Server) writeHTML(w http.ResponseWriter, status int, render func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		s.logger.Error("render failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
