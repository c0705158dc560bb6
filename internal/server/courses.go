package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gestornotas/gradebook/internal/export"
	"github.com/gestornotas/gradebook/internal/gradebook"
	"github.com/gestornotas/gradebook/internal/live"
)

// courseSummary is the dashboard view of one course.
type courseSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Students     int      `json:"students"`
	Assignments  int      `json:"assignments"`
	ClassAverage *float64 `json:"classAverage"`
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses := s.registry.Courses()

	summaries := make([]courseSummary, 0, len(courses))
	for _, c := range courses {
		sum := courseSummary{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Students:    len(c.Students),
			Assignments: len(c.Assignments),
		}
		if avg, ok := gradebook.ClassAverage(c); ok {
			sum.ClassAverage = &avg
		}
		summaries = append(summaries, sum)
	}

	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	c := gradebook.NewCourse(strings.TrimSpace(body.Name), strings.TrimSpace(body.Description))
	s.registry.Add(r.Context(), c)

	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.registry.Remove(r.Context(), id); err != nil {
		writeLookupError(w, err)
		return
	}
	s.courseChanged(r.Context(), id, live.ChangeDeleted)

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSheet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if s.sheets != nil {
		if sheet, ok := s.sheets.Get(r.Context(), id); ok {
			writeJSON(w, http.StatusOK, sheet)
			return
		}
	}

	c, err := s.registry.Get(id)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	sheet := gradebook.RenderSheet(c)
	if s.sheets != nil {
		s.sheets.Set(r.Context(), &sheet)
	}

	writeJSON(w, http.StatusOK, sheet)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	c, err := s.registry.Get(r.PathValue("id"))
	if err != nil {
		writeLookupError(w, err)
		return
	}

	sheet := gradebook.RenderSheet(c)

	filename := c.Name
	if strings.TrimSpace(filename) == "" {
		filename = "notas"
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename*=UTF-8''%s.xlsx", url.PathEscape(filename)))

	if err := export.Write(w, &sheet, c.Name); err != nil {
		// Headers are out already; all that is left is to log.
		slog.Error("xlsx export failed", "course", c.ID, "error", err)
	}
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := s.registry.Get(id); err != nil {
		writeLookupError(w, err)
		return
	}

	s.hub.ServeWS(w, r, id)
}
