package gradebook

import "math"

// CategoryGrade computes a student's grade for one category. The second
// return value is false when nothing under the category is graded yet.
//
// A branch category averages its children weighted by their declared
// percentages, normalized by the weight sum of the children that actually
// produced a grade. A category with one ungraded child among three still
// yields a meaningful partial grade instead of a deflated average. The
// normalization keeps the children's scale when contributing weights sum
// to 100 and scales the partial result up when they fall short.
//
// A leaf category averages its assignments' stored 0-10 values unweighted;
// assignments within one category are never individually weighted. Entries
// that never parsed to a number are skipped, not averaged in.
func CategoryGrade(c *Course, tree *Tree, category Category, studentID string) (float64, bool) {
	children := tree.ChildrenOf(category.ID)
	if len(children) > 0 {
		var weightedSum, totalWeight float64
		for _, child := range children {
			childGrade, ok := CategoryGrade(c, tree, child, studentID)
			if !ok {
				continue
			}
			weightedSum += childGrade * (child.Weight / 100)
			totalWeight += child.Weight
		}
		if totalWeight == 0 {
			return 0, false
		}
		return (weightedSum / totalWeight) * 100, true
	}

	var sum float64
	count := 0
	for _, a := range c.Assignments {
		if a.CategoryID != category.ID {
			continue
		}
		entry, ok := c.Grades[studentID][a.ID]
		if !ok || math.IsNaN(entry.Value) {
			continue
		}
		sum += entry.Value
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// FinalGrade computes a student's final grade across the root categories,
// normalized by the weights of the roots that contributed. It returns 0 when
// nothing is graded: consumers render 0 as "no grade yet", so the top level
// never reports absence the way internal levels do.
func FinalGrade(c *Course, tree *Tree, studentID string) float64 {
	var weightedSum, totalWeight float64
	for _, root := range tree.Roots() {
		grade, ok := CategoryGrade(c, tree, root, studentID)
		if !ok {
			continue
		}
		weightedSum += grade * (root.Weight / 100)
		totalWeight += root.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return (weightedSum / totalWeight) * 100
}

// ClassAverage returns the mean final grade over the course roster and false
// when the course has no students.
func ClassAverage(c *Course) (float64, bool) {
	if len(c.Students) == 0 {
		return 0, false
	}
	tree := NewTree(c.Categories)
	var sum float64
	for _, s := range c.Students {
		sum += FinalGrade(c, tree, s.ID)
	}
	return sum / float64(len(c.Students)), true
}
