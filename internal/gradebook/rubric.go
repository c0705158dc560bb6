package gradebook

// ScoreRubric converts per-criterion point values into a normalized 0-10
// score. Each entered value is clamped to [0, maxPoints]; a missing entry
// counts as 0, so a rubric with no input at all scores a real 0 rather than
// "ungraded" (numeric assignments behave the other way: an empty grade is
// excluded from averages).
//
// The clamped values are returned alongside the score so callers can persist
// them as the entry's criteriaValues.
func ScoreRubric(criteria []Criterion, values map[string]float64) (float64, map[string]float64) {
	clamped := make(map[string]float64, len(criteria))
	var totalPoints, maxPoints float64
	for _, crit := range criteria {
		v := values[crit.ID]
		if v < 0 {
			v = 0
		}
		if v > crit.MaxPoints {
			v = crit.MaxPoints
		}
		clamped[crit.ID] = v
		totalPoints += v
		maxPoints += crit.MaxPoints
	}
	if maxPoints == 0 {
		return 0, clamped
	}
	return (totalPoints / maxPoints) * 10, clamped
}
