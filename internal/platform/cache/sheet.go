package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gestornotas/gradebook/internal/gradebook"
)

// SheetCache keeps rendered sheets in Redis so repeated reads of an
// unchanged course skip the aggregation pass. Every course mutation must
// call Invalidate; the TTL only bounds staleness if an invalidation is
// lost.
type SheetCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewSheetCache wraps an existing cache connection.
func NewSheetCache(c *Cache, ttl time.Duration) *SheetCache {
	return &SheetCache{cache: c, ttl: ttl}
}

func sheetKey(courseID string) string {
	return "sheet:" + courseID
}

// Get returns the cached sheet for a course, or false on a miss. Transport
// and decode errors count as misses so the caller always falls back to
// rendering.
func (s *SheetCache) Get(ctx context.Context, courseID string) (*gradebook.Sheet, bool) {
	data, err := s.cache.Client.Get(ctx, sheetKey(courseID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("sheet cache read failed", "course", courseID, "error", err)
		}
		return nil, false
	}

	var sheet gradebook.Sheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		slog.Warn("sheet cache held invalid payload", "course", courseID, "error", err)
		return nil, false
	}
	return &sheet, true
}

// Set stores a rendered sheet. Failures are logged, not returned: the cache
// is best-effort.
func (s *SheetCache) Set(ctx context.Context, sheet *gradebook.Sheet) {
	data, err := json.Marshal(sheet)
	if err != nil {
		slog.Warn("sheet cache marshal failed", "course", sheet.CourseID, "error", err)
		return
	}
	if err := s.cache.Client.Set(ctx, sheetKey(sheet.CourseID), data, s.ttl).Err(); err != nil {
		slog.Warn("sheet cache write failed", "course", sheet.CourseID, "error", err)
	}
}

// Invalidate drops the cached sheet for a course.
func (s *SheetCache) Invalidate(ctx context.Context, courseID string) {
	if err := s.cache.Client.Del(ctx, sheetKey(courseID)).Err(); err != nil {
		slog.Warn("sheet cache invalidation failed", "course", courseID, "error", err)
	}
}
