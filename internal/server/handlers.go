package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/a-h/templ"
	"github.com/conneroisu/folio/internal/contact"
	"github.com/conneroisu/folio/internal/content"
	"github.com/conneroisu/folio/internal/navigation"
	"github.com/conneroisu/folio/internal/version"
	"github.com/conneroisu/folio/internal/view"
	"github.com/go-chi/chi/v5"
)

const maxFormBytes = 64 << 10

func (s *Server) document(w http.ResponseWriter) (*content.Document, bool) {
	doc := s.content.Document()
	if doc == nil {
		http.Error(w, "Content unavailable", http.StatusServiceUnavailable)
		return nil, false
	}
	return doc, true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	templ.Handler(c, templ.WithStatus(status), templ.WithErrorHandler(func(r *http.Request, err error) http.Handler {
		s.logger.Error(r.Context(), err, "Render failed", "path", r.URL.Path)
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		})
	})).ServeHTTP(w, r)
}

func (s *Server) pageData(doc *content.Document, snap contact.Snapshot) view.PageData {
	return view.PageData{
		Doc:     doc,
		Contact: snap,
		Nav:     navigation.State{Active: view.Sections[0]},
		Year:    s.now().Year(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, view.Page(s.pageData(doc, contact.IdleSnapshot())))
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w)
	if !ok {
		return
	}
	project, found := doc.FindProject(chi.URLParam(r, "slug"))
	if !found {
		s.render(w, r, http.StatusNotFound, view.NotFound(doc, s.now().Year()))
		return
	}
	s.render(w, r, http.StatusOK, view.ProjectDetail(doc, project, s.now().Year()))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, view.NotFound(s.content.Document(), s.now().Year()))
}

// handleContact is the form post used when the live client is not running.
// It drives a short-lived controller through the same validation and submit
// path as a live session and waits for the outcome.
func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.document(w)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	controller := contact.NewController(s.sender, contact.WithLogger(s.logger))
	defer controller.Close()

	for _, field := range contact.Fields {
		if err := controller.FieldChange(field, r.PostForm.Get(string(field))); err != nil {
			s.logger.Error(r.Context(), err, "Unexpected field rejection", "field", string(field))
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
	}

	status := http.StatusOK
	attempt, err := controller.Submit(r.Context())
	switch {
	case errors.Is(err, contact.ErrInvalidForm):
		status = http.StatusUnprocessableEntity
	case err != nil:
		s.logger.Error(r.Context(), err, "Submit failed to start")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	default:
		if result, _ := attempt.Wait(); result == contact.StatusFailed {
			status = http.StatusBadGateway
		}
	}

	s.render(w, r, status, view.Page(s.pageData(doc, controller.Snapshot())))
}

type healthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Content  string `json:"content"`
	Clients  int    `json:"clients"`
	Messages *int   `json:"messages,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "healthy",
		Version: version.GetShortVersion(),
		Content: "loaded",
		Clients: s.ws.ConnectedClients(),
	}
	status := http.StatusOK

	if s.content.Document() == nil {
		resp.Status = "degraded"
		resp.Content = "missing"
		status = http.StatusServiceUnavailable
	}
	if s.inbox != nil {
		n, err := s.inbox.Count(r.Context())
		if err != nil {
			s.logger.Warn(r.Context(), err, "Inbox health check failed")
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		} else {
			resp.Messages = &n
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}
