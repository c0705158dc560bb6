package gradebook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore persists each course as one jsonb row. The whole list is
// replaced on save: the store mirrors the single-writer, last-writer-wins
// contract of the file store, it just lives in a database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates the store and makes sure its table exists.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	_, err := pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS courses (
		   id         text PRIMARY KEY,
		   pos        int NOT NULL,
		   data       jsonb NOT NULL,
		   updated_at timestamptz NOT NULL DEFAULT now()
		 )`)
	if err != nil {
		return nil, fmt.Errorf("ensuring courses table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]*Course, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `SELECT data FROM courses ORDER BY pos ASC`)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []*Course
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		var course Course
		if err := json.Unmarshal(data, &course); err != nil {
			return nil, fmt.Errorf("unmarshal course: %w", err)
		}
		courses = append(courses, &course)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	return courses, nil
}

func (s *PostgresStore) Save(ctx context.Context, courses []*Course) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM courses`); err != nil {
		return fmt.Errorf("clear courses: %w", err)
	}
	for i, course := range courses {
		data, err := json.Marshal(course)
		if err != nil {
			return fmt.Errorf("marshal course %s: %w", course.ID, err)
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO courses (id, pos, data, updated_at) VALUES ($1, $2, $3::jsonb, now())`,
			course.ID, i, string(data),
		)
		if err != nil {
			return fmt.Errorf("insert course %s: %w", course.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}
