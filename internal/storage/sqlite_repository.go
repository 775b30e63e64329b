package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Fixed-width so created_at sorts lexically.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ Journal = (*SQLiteJournal)(nil)

type SQLiteJournal struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteJournal(db *sql.DB) (*SQLiteJournal, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	return &SQLiteJournal{db: db, now: time.Now}, nil
}

// OpenSQLite opens path, creating its directory, and applies migrations.
func OpenSQLite(path string) (*SQLiteJournal, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	journal, err := NewSQLiteJournal(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

func (r *SQLiteJournal) Close() error {
	return r.db.Close()
}

// Record stores in, assigning an id and timestamp when they are empty, and
// returns the stored run.
func (r *SQLiteJournal) Record(ctx context.Context, in Run) (Run, error) {
	if !in.Operation.IsValid() {
		return Run{}, fmt.Errorf("%w: %q", ErrInvalidOperation, in.Operation)
	}
	if strings.TrimSpace(in.Document) == "" {
		return Run{}, errors.New("storage: run document is required")
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = r.now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, document, operation, position, task_text, task_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Document, string(in.Operation), nullInt(in.Position), in.TaskText, in.TaskCount, mustTime(in.CreatedAt),
	)
	if err != nil {
		return Run{}, err
	}
	return in, nil
}

func (r *SQLiteJournal) Get(ctx context.Context, id string) (Run, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, document, operation, position, task_text, task_count, created_at
		FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

func (r *SQLiteJournal) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// List returns runs newest first.
func (r *SQLiteJournal) List(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, document, operation, position, task_text, task_count, created_at FROM runs`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.Document != "" {
		clauses = append(clauses, "document = ?")
		args = append(args, filter.Document)
	}
	if filter.Operation != "" {
		clauses = append(clauses, "operation = ?")
		args = append(args, string(filter.Operation))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY created_at DESC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Run, 0)
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	} else if offset > 0 {
		sql += " LIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var out Run
	var op string
	var position sql.NullInt64
	var created string
	if err := s.Scan(&out.ID, &out.Document, &op, &position, &out.TaskText, &out.TaskCount, &created); err != nil {
		return Run{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Run{}, err
	}
	out.Operation = Operation(op)
	if position.Valid {
		p := int(position.Int64)
		out.Position = &p
	}
	out.CreatedAt = createdAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
