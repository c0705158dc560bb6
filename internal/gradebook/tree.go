package gradebook

// Tree is a read-only index over a course's flat category list. It is cheap
// to build and is rebuilt on demand whenever categories change; categories
// themselves stay in the flat slice, the tree only holds lookups.
type Tree struct {
	byID     map[string]Category
	children map[string][]Category
	roots    []Category
}

// NewTree indexes a category forest. Categories whose parent id points to no
// existing category are treated as orphan roots rather than rejected.
func NewTree(categories []Category) *Tree {
	t := &Tree{
		byID:     make(map[string]Category, len(categories)),
		children: make(map[string][]Category),
	}
	for _, c := range categories {
		t.byID[c.ID] = c
	}
	for _, c := range categories {
		if c.ParentID == "" {
			t.roots = append(t.roots, c)
			continue
		}
		if _, ok := t.byID[c.ParentID]; !ok {
			t.roots = append(t.roots, c)
			continue
		}
		t.children[c.ParentID] = append(t.children[c.ParentID], c)
	}
	return t
}

// Get returns the category with the given id.
func (t *Tree) Get(id string) (Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Roots returns the root categories in their original list order.
func (t *Tree) Roots() []Category {
	return t.roots
}

// ChildrenOf returns the direct children of a category in list order.
func (t *Tree) ChildrenOf(id string) []Category {
	return t.children[id]
}

// IsLeaf reports whether no category names this id as its parent. Assignments
// attach only to leaves; that is a UI rule, not a structural one, so IsLeaf
// answers for any id.
func (t *Tree) IsLeaf(id string) bool {
	return len(t.children[id]) == 0
}

// DepthOf returns 0 for roots and 1 + parent depth otherwise. Orphans count
// as roots. A visited guard bounds the walk so malformed cyclic data cannot
// loop forever; the depth reported for a cycle member is the number of steps
// until the cycle closed.
func (t *Tree) DepthOf(id string) int {
	depth := 0
	visited := map[string]bool{id: true}
	cur, ok := t.byID[id]
	if !ok {
		return 0
	}
	for cur.ParentID != "" {
		parent, ok := t.byID[cur.ParentID]
		if !ok || visited[parent.ID] {
			break
		}
		visited[parent.ID] = true
		depth++
		cur = parent
	}
	return depth
}

// MaxDepth returns the deepest category level, 0 for an empty forest.
func (t *Tree) MaxDepth() int {
	max := 0
	for id := range t.byID {
		if d := t.DepthOf(id); d > max {
			max = d
		}
	}
	return max
}
