package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-pagechat/internal/core/domain"
	"github.com/custodia-labs/sercha-pagechat/internal/core/ports/driving"
)

const readyTimeout = 3 * time.Second

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the server
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Pings every backend; 503 when any of them fails
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]any
// @Failure      503  {object}  map[string]any
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.checks))
	for name, p := range s.checks {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("readiness check failed", "check", name, "error", err)
			checks[name] = "error: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]any{
		"status": "ready",
		"checks": checks,
	}
	if status != http.StatusOK {
		body["status"] = "unavailable"
	}
	if s.runtime != nil {
		body["runtime"] = s.runtime.Snapshot()
	}
	writeJSON(w, status, body)
}

// handleVersion godoc
// @Summary      Get version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleNoContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	// Crawlers following page links would trigger ingestion of every target
	_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
}

// handlePage godoc
// @Summary      Chat page
// @Description  Reconstructs the target URL from the path, indexes it on first visit and renders the chat widget
// @Tags         Page
// @Produce      html
// @Param        url  path  string  true  "Target URL, one path segment per URL segment"
// @Success      200
// @Failure      400
// @Failure      503
// @Router       /{url} [get]
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	req := driving.PageRequest{
		Segments:     domain.SplitRouteSegments(r.URL.EscapedPath()),
		SessionToken: sessionToken(r),
	}

	view, err := s.pageService.Load(r.Context(), req)
	if err != nil {
		status, message := pageErrorStatus(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("page load failed", "path", r.URL.EscapedPath(), "error", err)
		}
		s.writeHTML(w, status, func(buf *bytes.Buffer) error {
			return s.renderer.RenderError(buf, status, message)
		})
		return
	}

	s.writeHTML(w, http.StatusOK, func(buf *bytes.Buffer) error {
		return s.renderer.RenderPage(buf, view)
	})
}

// sessionToken returns the session cookie value, or "" when absent
func sessionToken(r *http.Request) string {
	c, err := r.Cookie(domain.SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// pageErrorStatus maps page errors to an HTTP status and a user-facing message
func pageErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrMissingRouteSegments):
		return http.StatusBadRequest, "Add the address of a page to the path, for example /https://example.com/docs"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "The page address in the path could not be decoded."
	case errors.Is(err, domain.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "The chat service is temporarily unavailable. Please try again shortly."
	case errors.Is(err, context.Canceled):
		return 499, "Request cancelled."
	default:
		return http.StatusInternalServerError, "Something went wrong while preparing this page."
	}
}

// Response helpers

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
