package server

import (
	"net/http"
	"strconv"

	"github.com/gestornotas/gradebook/internal/gradebook"
	"github.com/gestornotas/gradebook/internal/live"
)

// handlePutNumericGrade records a direct grade from raw input. The value
// arrives the way the grade cell holds it: a string the engine parses,
// clamps or clears. Numbers and null are accepted too and normalized here.
func (s *Server) handlePutNumericGrade(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	studentID := r.PathValue("studentID")
	assignmentID := r.PathValue("assignmentID")

	var body struct {
		Value any `json:"value"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	raw := ""
	switch v := body.Value.(type) {
	case nil:
	case string:
		raw = v
	case float64:
		raw = strconv.FormatFloat(v, 'f', -1, 64)
	default:
		writeError(w, http.StatusBadRequest, "value must be a string, number or null")
		return
	}

	err := s.registry.Update(r.Context(), courseID, func(c *gradebook.Course) error {
		if _, ok := c.FindStudent(studentID); !ok {
			return errNotFound("student", studentID)
		}
		if _, ok := c.FindAssignment(assignmentID); !ok {
			return errNotFound("assignment", assignmentID)
		}
		c.SetNumericGrade(studentID, assignmentID, raw)
		return nil
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	s.courseChanged(r.Context(), courseID, live.ChangeGrades)

	w.WriteHeader(http.StatusNoContent)
}

// handlePutRubricGrade scores a rubric assignment from per-criterion values
// and returns the resulting 0-10 grade.
func (s *Server) handlePutRubricGrade(w http.ResponseWriter, r *http.Request) {
	courseID := r.PathValue("id")
	studentID := r.PathValue("studentID")
	assignmentID := r.PathValue("assignmentID")

	var body struct {
		CriteriaValues map[string]float64 `json:"criteriaValues"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var score float64
	err := s.registry.Update(r.Context(), courseID, func(c *gradebook.Course) error {
		if _, ok := c.FindStudent(studentID); !ok {
			return errNotFound("student", studentID)
		}
		var err error
		score, err = c.SetRubricGrade(studentID, assignmentID, body.CriteriaValues)
		return err
	})
	if err != nil {
		writeUpdateError(w, err)
		return
	}
	s.courseChanged(r.Context(), courseID, live.ChangeGrades)

	writeJSON(w, http.StatusOK, map[string]float64{"value": score})
}
