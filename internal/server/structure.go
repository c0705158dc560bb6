package server

import (
	"net/http"
	"strings"

	"github.com/gestornotas/gradebook/internal/gradebook"
	"github.com/gestornotas/gradebook/internal/live"
)

// handlePutCategories replaces the whole category forest. Assignments keep
// their category ids; ones left dangling just stop contributing.
func (s *Server) handlePutCategories(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")

	var categories []gradebook.Category
	if err := decodeBody(r, &categories); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for i := range categories {
		if categories[i].ID == "" {
			categories[i].ID = gradebook.GenerateID()
		}
	}

	err := s.registry.Update(r.Context(), courseID, func(c *gradebook.Course) error {
		c.ReplaceCategories(categories)
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	s.courseChanged(r.Context(), courseID, live.ChangeScheme)

	w.WriteHeader(http.StatusNoContent)
}

// handleApplyScheme stamps a template onto the course as its new forest.
func (s *Server) handleApplyScheme(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")

	var body struct {
		SchemeID string `json:"schemeId"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, ok := s.schemes.Instantiate(body.SchemeID)
	if !ok {
		writeError(w, http.StatusNotFound, "scheme not found: "+body.SchemeID)
		return
	}

	err := s.registry.Update(r.Context(), courseID, func(c *gradebook.Course) error {
		c.ReplaceCategories(categories)
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	s.courseChanged(r.Context(), courseID, live.ChangeScheme)

	writeJSON(w, http.StatusOK, categories)
}

func (s *Server) handleListSchemes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.schemes.All())
}

func (s *Server) handleAddAssignment(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")

	var body gradebook.Assignment
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if body.Type == gradebook.TypeRubric && len(body.Criteria) == 0 {
		writeError(w, http.StatusBadRequest, "rubric assignments need criteria")
		return
	}

	var created gradebook.Assignment
	err := s.registry.Update(r.Context(), courseID, func(c *gradebook.Course) error {
		created = c.AddAssignment(body)
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	s.courseChanged(r.Context(), courseID, live.ChangeSheet)

	writeJSON(w, http.StatusCreated, created)
}

// handleDeleteAssignment drops an assignment and its column of grades.
func (s *Server) handleDeleteAssignment(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	assignmentID := r.PathValue("assignmentID")

	err := s.registry.Update(r.Context(), courseID, func(c *gradebook.Course) error {
		if !c.RemoveAssignment(assignmentID) {
			return errNotFound("assignment", assignmentID)
		}
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	s.courseChanged(r.Context(), courseID, live.ChangeSheet)

	w.WriteHeader(http.StatusNoContent)
}
