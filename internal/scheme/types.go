package scheme

// Template is a reusable grading scheme loaded from YAML. Applying it to a
// course stamps out a fresh category tree, so templates carry names and
// weights but never ids.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Categories  []Node `yaml:"categories"`
}

// Node is one category in a template, possibly with nested children.
type Node struct {
	Name     string  `yaml:"name"`
	Weight   float64 `yaml:"weight"`
	Children []Node  `yaml:"children"`
}
