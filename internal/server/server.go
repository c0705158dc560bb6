// Package server exposes the gradebook engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gestornotas/gradebook/internal/gradebook"
	"github.com/gestornotas/gradebook/internal/live"
	"github.com/gestornotas/gradebook/internal/platform/cache"
	"github.com/gestornotas/gradebook/internal/scheme"
)

// HealthChecker is anything readyz should ping.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server routes HTTP traffic to the registry and its collaborators. The
// sheet cache is optional; a nil cache just renders on every request.
type Server struct {
	registry *gradebook.Registry
	schemes  *scheme.Loader
	sheets   *cache.SheetCache
	hub      *live.Hub
	checks   []HealthChecker
}

// New assembles the server. checks are pinged by readyz.
func New(registry *gradebook.Registry, schemes *scheme.Loader, sheets *cache.SheetCache, hub *live.Hub, checks ...HealthChecker) *Server {
	return &Server{
		registry: registry,
		schemes:  schemes,
		sheets:   sheets,
		hub:      hub,
		checks:   checks,
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("GET /api/courses", s.handleListCourses)
	mux.HandleFunc("POST /api/courses", s.handleCreateCourse)
	mux.HandleFunc("DELETE /api/courses/{id}", s.handleDeleteCourse)

	mux.HandleFunc("GET /api/courses/{id}/sheet", s.handleSheet)
	mux.HandleFunc("GET /api/courses/{id}/export", s.handleExport)
	mux.HandleFunc("GET /api/courses/{id}/live", s.handleLive)

	mux.HandleFunc("PUT /api/courses/{id}/grades/{studentID}/{assignmentID}", s.handlePutNumericGrade)
	mux.HandleFunc("PUT /api/courses/{id}/rubric-grades/{studentID}/{assignmentID}", s.handlePutRubricGrade)

	mux.HandleFunc("POST /api/courses/{id}/students", s.handleAddStudent)
	mux.HandleFunc("DELETE /api/courses/{id}/students/{studentID}", s.handleDeleteStudent)
	mux.HandleFunc("POST /api/courses/{id}/students/import", s.handleImportStudents)

	mux.HandleFunc("PUT /api/courses/{id}/categories", s.handlePutCategories)
	mux.HandleFunc("POST /api/courses/{id}/categories/from-scheme", s.handleApplyScheme)
	mux.HandleFunc("GET /api/schemes", s.handleListSchemes)

	mux.HandleFunc("POST /api/courses/{id}/assignments", s.handleAddAssignment)
	mux.HandleFunc("DELETE /api/courses/{id}/assignments/{assignmentID}", s.handleDeleteAssignment)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, check := range s.checks {
		if err := check.HealthCheck(r.Context()); err != nil {
			slog.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// courseChanged drops the cached sheet and notifies live clients after any
// mutation of the given course.
func (s *Server) courseChanged(ctx context.Context, courseID, change string) {
	if s.sheets != nil {
		s.sheets.Invalidate(ctx, courseID)
	}
	s.hub.Broadcast(live.Event{CourseID: courseID, Change: change})
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLookupError maps a registry error to 404 or 500.
func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, gradebook.ErrCourseNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	slog.Error("course lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// notFoundError marks a missing entity inside an otherwise valid course.
type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string { return e.kind + " not found: " + e.id }

func errNotFound(kind, id string) error { return notFoundError{kind: kind, id: id} }

// writeUpdateError maps an Update error: unknown course or entity is 404,
// anything else the mutation rejected is 400.
func writeUpdateError(w http.ResponseWriter, err error) {
	var nf notFoundError
	switch {
	case errors.Is(err, gradebook.ErrCourseNotFound), errors.As(err, &nf):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
