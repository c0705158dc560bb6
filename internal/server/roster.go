package server

import (
	"net/http"
	"strings"

	"github.com/gestornotas/gradebook/internal/gradebook"
	"github.com/gestornotas/gradebook/internal/live"
)

func (s *Server) handleAddStudent(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")

	var body struct {
		Name    string `json:"name"`
		Surname string `json:"surname"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	var student gradebook.Student
	err := s.registry.Update(r.Context(), courseID, func(c *gradebook.Course) error {
		student = c.AddStudent(strings.TrimSpace(body.Name), strings.TrimSpace(body.Surname))
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	s.courseChanged(r.Context(), courseID, live.ChangeRoster)

	writeJSON(w, http.StatusCreated, student)
}

// handleDeleteStudent drops a student; the grade row goes with it.
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	studentID := r.PathValue("studentID")

	err := s.registry.Update(r.Context(), courseID, func(c *gradebook.Course) error {
		if !c.RemoveStudent(studentID) {
			return errNotFound("student", studentID)
		}
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	s.courseChanged(r.Context(), courseID, live.ChangeRoster)

	w.WriteHeader(http.StatusNoContent)
}

// handleImportStudents bulk-adds students from a CSV body and reports how
// many rows made it in.
func (s *Server) handleImportStudents(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")

	var imported int
	err := s.registry.Update(r.Context(), courseID, func(c *gradebook.Course) error {
		var err error
		imported, err = gradebook.ImportStudents(c, r.Body)
		return err
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	if imported > 0 {
		s.courseChanged(r.Context(), courseID, live.ChangeRoster)
	}

	writeJSON(w, http.StatusOK, map[string]int{"imported": imported})
}
