package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type dbConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore keeps job records in the extraction_jobs table created by
// Migrate.
type PostgresStore struct {
	db   dbConn
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: pool, pool: pool}
}

const insertJobSQL = `
INSERT INTO extraction_jobs (job_id, doc_id, status, progress, message, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`

const updateJobSQL = `
UPDATE extraction_jobs
SET status = $2, progress = $3, message = $4, updated_at = $5
WHERE job_id = $1;
`

const selectJobSQL = `
SELECT job_id, doc_id, status, progress, message, created_at, updated_at
FROM extraction_jobs
WHERE job_id = $1;
`

func (s *PostgresStore) Create(ctx context.Context, job Job) error {
	_, err := s.db.Exec(ctx, insertJobSQL,
		job.ID, job.DocID, string(job.Status), job.Progress, job.Message, job.CreatedAt, job.UpdatedAt)
	return err
}

func (s *PostgresStore) Update(ctx context.Context, job Job) error {
	tag, err := s.db.Exec(ctx, updateJobSQL,
		job.ID, string(job.Status), job.Progress, job.Message, job.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (Job, error) {
	var (
		job    Job
		status string
	)
	err := s.db.QueryRow(ctx, selectJobSQL, id).Scan(
		&job.ID, &job.DocID, &status, &job.Progress, &job.Message, &job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Job{}, ErrJobNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("load job %s: %w", id, err)
	}
	job.Status = Status(status)
	return job, nil
}

// Close closes the pool if the store owns one.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
