package gradebook_test

import (
	"testing"

	"github.com/gestornotas/gradebook/internal/gradebook"
)

func TestScoreRubric(t *testing.T) {
	criteria := []gradebook.Criterion{
		{ID: "c1", Name: "Content", MaxPoints: 5},
		{ID: "c2", Name: "Style", MaxPoints: 5},
	}

	score, clamped := gradebook.ScoreRubric(criteria, map[string]float64{"c1": 5, "c2": 0})
	if score != 5 {
		t.Errorf("score = %v, want 5 ((5+0)/(5+5)*10)", score)
	}
	if clamped["c1"] != 5 || clamped["c2"] != 0 {
		t.Errorf("clamped = %v, want c1:5 c2:0", clamped)
	}
}

func TestScoreRubric_ClampsToMax(t *testing.T) {
	criteria := []gradebook.Criterion{{ID: "c1", Name: "Content", MaxPoints: 5}}

	score, clamped := gradebook.ScoreRubric(criteria, map[string]float64{"c1": 7})
	if clamped["c1"] != 5 {
		t.Errorf("clamped c1 = %v, want 5", clamped["c1"])
	}
	if score != 10 {
		t.Errorf("score = %v, want 10", score)
	}
}

func TestScoreRubric_ClampsNegativeToZero(t *testing.T) {
	criteria := []gradebook.Criterion{{ID: "c1", Name: "Content", MaxPoints: 4}}

	score, clamped := gradebook.ScoreRubric(criteria, map[string]float64{"c1": -3})
	if clamped["c1"] != 0 {
		t.Errorf("clamped c1 = %v, want 0", clamped["c1"])
	}
	if score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
}

func TestScoreRubric_MissingValuesCountAsZero(t *testing.T) {
	// A rubric with no input scores a real 0, unlike numeric assignments
	// where an empty grade is excluded from averaging.
	criteria := []gradebook.Criterion{
		{ID: "c1", Name: "Content", MaxPoints: 5},
		{ID: "c2", Name: "Style", MaxPoints: 5},
	}

	score, clamped := gradebook.ScoreRubric(criteria, nil)
	if score != 0 {
		t.Errorf("score = %v, want 0", score)
	}
	if clamped["c1"] != 0 || clamped["c2"] != 0 {
		t.Errorf("clamped = %v, want zeros for every criterion", clamped)
	}
}

func TestScoreRubric_ZeroMaxPoints(t *testing.T) {
	criteria := []gradebook.Criterion{{ID: "c1", Name: "Broken", MaxPoints: 0}}

	score, _ := gradebook.ScoreRubric(criteria, map[string]float64{"c1": 3})
	if score != 0 {
		t.Errorf("score = %v, want 0 when max points sum to 0", score)
	}
}

func TestScoreRubric_PartialCredit(t *testing.T) {
	criteria := []gradebook.Criterion{
		{ID: "c1", MaxPoints: 4},
		{ID: "c2", MaxPoints: 6},
	}

	score, _ := gradebook.ScoreRubric(criteria, map[string]float64{"c1": 2, "c2": 3})
	if score != 5 {
		t.Errorf("score = %v, want 5 ((2+3)/(4+6)*10)", score)
	}
}
