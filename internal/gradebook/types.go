// Package gradebook implements the grading engine: weighted category trees,
// per-student grade aggregation, rubric scoring, and the tabular layout
// derived from a course's category forest.
package gradebook

import (
	"crypto/rand"
	"fmt"
)

// AssignmentType distinguishes direct numeric entry from rubric scoring.
type AssignmentType string

const (
	TypeNumeric AssignmentType = "numeric"
	TypeRubric  AssignmentType = "rubric"
)

// Course owns its students, category forest, assignments and grade table.
type Course struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Students    []Student    `json:"students"`
	Categories  []Category   `json:"categories"`
	Assignments []Assignment `json:"assignments"`
	Grades      GradeTable   `json:"grades"`

	// Rubrics is the pre-category record shape. Only the migrator reads it;
	// it is cleared on conversion and never written back.
	Rubrics []LegacyRubric `json:"rubrics,omitempty"`
}

// Student belongs to exactly one course and is referenced by id from the
// grade table.
type Student struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// Category is a node in the weighted evaluation forest. ParentID is empty for
// roots. Weight is a percentage (0-100); siblings should sum to 100 but the
// engine never enforces that.
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Weight   float64 `json:"weight"`
	ParentID string  `json:"parentId,omitempty"`
}

// Assignment is a gradable item attached to a leaf category. Criteria is
// non-empty only for rubric assignments.
type Assignment struct {
	ID         string         `json:"id"`
	CategoryID string         `json:"categoryId"`
	Name       string         `json:"name"`
	Type       AssignmentType `json:"type"`
	Criteria   []Criterion    `json:"criteria,omitempty"`
}

// Criterion is one scored dimension of a rubric assignment.
type Criterion struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	MaxPoints float64 `json:"maxPoints"`
}

// GradeEntry holds the normalized 0-10 score for one (student, assignment)
// pair. CriteriaValues carries the raw per-criterion inputs for rubric
// assignments only.
type GradeEntry struct {
	Value          float64            `json:"value"`
	CriteriaValues map[string]float64 `json:"criteriaValues,omitempty"`
}

// GradeTable maps studentID -> assignmentID -> entry.
type GradeTable map[string]map[string]GradeEntry

// LegacyRubric is the flat "rubric list" item of the old record shape.
type LegacyRubric struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight,omitempty"`
}

// NewCourse creates an empty course with a fresh id.
func NewCourse(name, description string) *Course {
	return &Course{
		ID:          GenerateID(),
		Name:        name,
		Description: description,
		Students:    []Student{},
		Categories:  []Category{},
		Assignments: []Assignment{},
		Grades:      GradeTable{},
	}
}

// GenerateID returns a random hex identifier.
func GenerateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return fmt.Sprintf("%x", b)
}
