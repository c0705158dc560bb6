package gradebook

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const (
	defaultCategoryID   = "cat_default"
	defaultCategoryName = "General"
)

// Migrate normalizes a loaded course record into the current shape and
// reports whether a legacy conversion actually happened. Callers persist the
// course list only in that case; plain defaulting of missing collections is
// not worth a save.
//
// The legacy shape carries a flat "rubrics" list and no categories. It is
// converted by synthesizing a single root category and turning every rubric
// into a numeric assignment under it, keeping ids and names so the existing
// grade table keys stay valid. Running Migrate on an already-current course
// is a no-op.
func Migrate(c *Course) bool {
	converted := false
	if c.Rubrics != nil && c.Categories == nil {
		c.Categories = []Category{{
			ID:     defaultCategoryID,
			Name:   defaultCategoryName,
			Weight: 100,
		}}
		for _, r := range c.Rubrics {
			c.Assignments = append(c.Assignments, Assignment{
				ID:         r.ID,
				CategoryID: defaultCategoryID,
				Name:       r.Name,
				Type:       TypeNumeric,
			})
		}
		c.Rubrics = nil
		converted = true
	}

	if c.Students == nil {
		c.Students = []Student{}
	}
	if c.Categories == nil {
		c.Categories = []Category{}
	}
	if c.Assignments == nil {
		c.Assignments = []Assignment{}
	}
	if c.Grades == nil {
		c.Grades = GradeTable{}
	}
	return converted
}

// MigrateAll migrates every course in a loaded list and reports whether any
// legacy conversion occurred.
func MigrateAll(courses []*Course) bool {
	converted := false
	for _, c := range courses {
		if Migrate(c) {
			converted = true
		}
	}
	return converted
}

// UnmarshalJSON accepts both grade-entry shapes: the current object form and
// the legacy bare value (number or numeric string). The two shapes are
// resolved here, once, at the load boundary; nothing else in the engine
// branches on record shape. Legacy values that never parse to a number
// become NaN entries, which the aggregator then skips.
func (e *GradeEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var obj struct {
			Value          json.RawMessage    `json:"value"`
			CriteriaValues map[string]float64 `json:"criteriaValues"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		e.Value = coerceGradeValue(obj.Value)
		e.CriteriaValues = obj.CriteriaValues
		return nil
	}

	e.Value = coerceGradeValue(trimmed)
	e.CriteriaValues = nil
	return nil
}

// coerceGradeValue best-effort parses a raw JSON grade value. Anything that
// is not a number, numeric string included, ends up NaN.
func coerceGradeValue(raw json.RawMessage) float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return math.NaN()
	}
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return num
	}
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// MarshalJSON writes the current object shape. NaN has no JSON encoding, so
// entries that never parsed serialize with a null value and round-trip back
// to NaN.
func (e GradeEntry) MarshalJSON() ([]byte, error) {
	obj := struct {
		Value          *float64           `json:"value"`
		CriteriaValues map[string]float64 `json:"criteriaValues,omitempty"`
	}{CriteriaValues: e.CriteriaValues}
	if !math.IsNaN(e.Value) {
		obj.Value = &e.Value
	}
	return json.Marshal(obj)
}
