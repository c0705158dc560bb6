package scheme

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/gestornotas/gradebook/internal/gradebook"
)

// Loader loads and caches grading scheme templates from the filesystem.
type Loader struct {
	rootDir   string
	templates map[string]Template
	mu        sync.RWMutex
}

// NewLoader creates a new template loader and loads all templates under
// rootDir. A missing directory is not an error: teachers without custom
// templates just see an empty list.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir:   rootDir,
		templates: make(map[string]Template),
	}

	if _, err := os.Stat(rootDir); os.IsNotExist(err) {
		slog.Info("scheme directory missing, no templates loaded", "path", rootDir)
		return l, nil
	}

	if err := l.loadAll(); err != nil {
		return nil, fmt.Errorf("loading schemes: %w", err)
	}

	slog.Info("schemes loaded", "templates", len(l.templates))
	return l, nil
}

// Get returns a template by ID.
func (l *Loader) Get(id string) (Template, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	t, ok := l.templates[id]
	return t, ok
}

// All returns all loaded templates sorted by name.
func (l *Loader) All() []Template {
	l.mu.RLock()
	defer l.mu.RUnlock()
	templates := make([]Template, 0, len(l.templates))
	for _, t := range l.templates {
		templates = append(templates, t)
	}
	sort.Slice(templates, func(i, j int) bool { return templates[i].Name < templates[j].Name })
	return templates
}

// Instantiate builds a fresh category tree from the template, generating new
// ids for every category so repeated applications never collide.
func (l *Loader) Instantiate(id string) ([]gradebook.Category, bool) {
	t, ok := l.Get(id)
	if !ok {
		return nil, false
	}

	var categories []gradebook.Category
	var expand func(nodes []Node, parentID string)
	expand = func(nodes []Node, parentID string) {
		for _, n := range nodes {
			cat := gradebook.Category{
				ID:       gradebook.GenerateID(),
				Name:     n.Name,
				Weight:   n.Weight,
				ParentID: parentID,
			}
			categories = append(categories, cat)
			expand(n.Children, cat.ID)
		}
	}
	expand(t.Categories, "")

	return categories, true
}

func (l *Loader) loadAll() error {
	return filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
			return l.loadTemplate(path)
		}
		return nil
	})
}

func (l *Loader) loadTemplate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		slog.Warn("skipping invalid scheme YAML", "path", path, "error", err)
		return nil
	}

	if t.ID == "" {
		return nil // Not a template file
	}

	l.mu.Lock()
	l.templates[t.ID] = t
	l.mu.Unlock()

	return nil
}
