package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *int:
			*p = r.values[i].(int)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

type fakeDB struct {
	tag  string
	row  fakeRow
	sqls []string
}

func (f *fakeDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	f.sqls = append(f.sqls, sql)
	return pgconn.NewCommandTag(f.tag), nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.sqls = append(f.sqls, sql)
	return f.row
}

func TestPostgresStoreGet(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	db := &fakeDB{row: fakeRow{values: []any{"job-1", "doc-1", "running", 30, "Extracting domain concepts...", now, now}}}
	store := &PostgresStore{db: db}

	job, err := store.Get(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	want := Job{ID: "job-1", DocID: "doc-1", Status: StatusRunning, Progress: 30, Message: "Extracting domain concepts...", CreatedAt: now, UpdatedAt: now}
	if job != want {
		t.Fatalf("unexpected job:\n got: %+v\nwant: %+v", job, want)
	}
}

func TestPostgresStoreNotFound(t *testing.T) {
	ctx := context.Background()
	db := &fakeDB{tag: "UPDATE 0", row: fakeRow{err: pgx.ErrNoRows}}
	store := &PostgresStore{db: db}

	if _, err := store.Get(ctx, "job-1"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound from Get, got %v", err)
	}
	if err := store.Update(ctx, Job{ID: "job-1"}); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound from Update, got %v", err)
	}
}
