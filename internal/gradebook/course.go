package gradebook

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrCourseNotFound is returned by registry lookups for unknown course ids.
var ErrCourseNotFound = errors.New("course not found")

// FindStudent returns the student with the given id.
func (c *Course) FindStudent(id string) (Student, bool) {
	for _, s := range c.Students {
		if s.ID == id {
			return s, true
		}
	}
	return Student{}, false
}

// FindAssignment returns the assignment with the given id.
func (c *Course) FindAssignment(id string) (Assignment, bool) {
	for _, a := range c.Assignments {
		if a.ID == id {
			return a, true
		}
	}
	return Assignment{}, false
}

// AssignmentsIn returns the assignments attached to a category, in course
// list order.
func (c *Course) AssignmentsIn(categoryID string) []Assignment {
	var out []Assignment
	for _, a := range c.Assignments {
		if a.CategoryID == categoryID {
			out = append(out, a)
		}
	}
	return out
}

// AddStudent appends a student to the roster and returns it.
func (c *Course) AddStudent(name, surname string) Student {
	s := Student{ID: GenerateID(), Name: name, Surname: surname}
	c.Students = append(c.Students, s)
	return s
}

// RemoveStudent drops a student and the student's entire grade row.
func (c *Course) RemoveStudent(id string) bool {
	for i, s := range c.Students {
		if s.ID == id {
			c.Students = append(c.Students[:i], c.Students[i+1:]...)
			delete(c.Grades, id)
			return true
		}
	}
	return false
}

// AddAssignment attaches an assignment, generating ids for it and any rubric
// criteria that lack one.
func (c *Course) AddAssignment(a Assignment) Assignment {
	if a.ID == "" {
		a.ID = GenerateID()
	}
	if a.Type == "" {
		a.Type = TypeNumeric
	}
	for i := range a.Criteria {
		if a.Criteria[i].ID == "" {
			a.Criteria[i].ID = GenerateID()
		}
	}
	c.Assignments = append(c.Assignments, a)
	return a
}

// RemoveAssignment drops an assignment and removes its id from every
// student's grade row.
func (c *Course) RemoveAssignment(id string) bool {
	for i, a := range c.Assignments {
		if a.ID == id {
			c.Assignments = append(c.Assignments[:i], c.Assignments[i+1:]...)
			for studentID := range c.Grades {
				delete(c.Grades[studentID], id)
			}
			return true
		}
	}
	return false
}

// ReplaceCategories swaps the whole category forest. Assignments are left
// untouched: one whose category disappeared simply stops contributing
// anywhere, it is not cleaned up. Re-pointing it at a new leaf restores its
// grades.
func (c *Course) ReplaceCategories(categories []Category) {
	if categories == nil {
		categories = []Category{}
	}
	c.Categories = categories
}

// SetNumericGrade records a direct 0-10 grade from raw user input. An empty
// or non-numeric value clears the entry so it drops out of averages; numeric
// input is clamped to [0, 10].
func (c *Course) SetNumericGrade(studentID, assignmentID, raw string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		delete(c.Grades[studentID], assignmentID)
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) {
		delete(c.Grades[studentID], assignmentID)
		return
	}
	if v < 0 {
		v = 0
	}
	if v > 10 {
		v = 10
	}
	if c.Grades == nil {
		c.Grades = GradeTable{}
	}
	if c.Grades[studentID] == nil {
		c.Grades[studentID] = map[string]GradeEntry{}
	}
	c.Grades[studentID][assignmentID] = GradeEntry{Value: v}
}

// SetRubricGrade scores a rubric assignment from per-criterion inputs and
// stores both the normalized value and the clamped raw values. The caller is
// responsible for grading an assignment that exists; an unknown or
// non-rubric id is a precondition violation reported as an error.
func (c *Course) SetRubricGrade(studentID, assignmentID string, values map[string]float64) (float64, error) {
	a, ok := c.FindAssignment(assignmentID)
	if !ok {
		return 0, fmt.Errorf("assignment not found: %s", assignmentID)
	}
	if a.Type != TypeRubric || len(a.Criteria) == 0 {
		return 0, fmt.Errorf("assignment %s has no rubric criteria", assignmentID)
	}

	score, clamped := ScoreRubric(a.Criteria, values)
	if c.Grades == nil {
		c.Grades = GradeTable{}
	}
	if c.Grades[studentID] == nil {
		c.Grades[studentID] = map[string]GradeEntry{}
	}
	c.Grades[studentID][assignmentID] = GradeEntry{Value: score, CriteriaValues: clamped}
	return score, nil
}

// RootWeightTotal sums the root category weights. The engine computes with
// whatever weights exist; this total only feeds the "should sum to 100" hint
// surfaced to the user.
func (c *Course) RootWeightTotal() float64 {
	var total float64
	for _, cat := range c.Categories {
		if cat.ParentID == "" {
			total += cat.Weight
		}
	}
	return total
}
