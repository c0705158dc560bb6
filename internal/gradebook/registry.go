package gradebook

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Registry owns the in-memory course list for a session. All mutation goes
// through it: it runs the migrator once at load, serializes edits, and
// triggers a best-effort save after each one. A failed save is logged and
// the session carries on; memory stays authoritative.
type Registry struct {
	mu      sync.RWMutex
	store   Store
	courses []*Course
}

// NewRegistry loads the store, migrates what it finds, and persists
// immediately if a legacy conversion actually rewrote a course.
func NewRegistry(ctx context.Context, store Store) (*Registry, error) {
	courses, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading courses: %w", err)
	}

	r := &Registry{store: store, courses: courses}
	if MigrateAll(courses) {
		slog.Info("legacy course data migrated", "courses", len(courses))
		r.save(ctx)
	}
	return r, nil
}

// Courses returns a snapshot of the course list.
func (r *Registry) Courses() []*Course {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Course{}, r.courses...)
}

// Get returns the course with the given id.
func (r *Registry) Get(id string) (*Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCourseNotFound, id)
}

// Add appends a course and saves.
func (r *Registry) Add(ctx context.Context, c *Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	Migrate(c)
	r.courses = append(r.courses, c)
	r.save(ctx)
}

// Remove deletes a course and everything beneath it.
func (r *Registry) Remove(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.courses {
		if c.ID == id {
			r.courses = append(r.courses[:i], r.courses[i+1:]...)
			r.save(ctx)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCourseNotFound, id)
}

// Update runs fn against a course under the registry lock and saves when fn
// succeeds. fn errors are returned untouched and skip the save.
func (r *Registry) Update(ctx context.Context, id string, fn func(*Course) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.courses {
		if c.ID == id {
			if err := fn(c); err != nil {
				return err
			}
			r.save(ctx)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCourseNotFound, id)
}

// save persists the current list, logging instead of failing: persistence is
// best-effort during a session.
func (r *Registry) save(ctx context.Context) {
	if err := r.store.Save(ctx, r.courses); err != nil {
		slog.Error("saving courses failed", "error", err)
	}
}
