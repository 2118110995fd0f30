// Package postgres stores diagnosis history in PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id           TEXT PRIMARY KEY,
	problem_type TEXT NOT NULL,
	cause        TEXT NOT NULL,
	solution     TEXT NOT NULL,
	confidence   DOUBLE PRECISION NOT NULL,
	symptoms     TEXT[] NOT NULL DEFAULT '{}',
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_created_at ON history (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_history_problem_type ON history (problem_type, cause);
`

type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to PostgreSQL, verifies the connection and ensures the schema.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return db, nil
}

// HistoryRepo implements outbound.HistoryRepository using PostgreSQL.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Append(ctx context.Context, e model.HistoryEntry) error {
	symptoms := e.Symptoms
	if symptoms == nil {
		symptoms = []string{}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO history (id, problem_type, cause, solution, confidence, symptoms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		e.ID,
		e.ProblemType,
		e.Cause,
		e.Solution,
		e.Confidence,
		pq.Array(symptoms),
		e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// List returns a filtered page of entries, newest first.
func (r *HistoryRepo) List(ctx context.Context, filter outbound.HistoryFilter, page outbound.PageRequest) (outbound.PageResult[model.HistoryEntry], error) {
	page = page.Normalize()
	where, args := buildWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history"+where, args...).Scan(&total); err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("counting history: %w", err)
	}

	n := len(args)
	q := fmt.Sprintf(`
		SELECT id, problem_type, cause, solution, confidence, symptoms, created_at
		FROM history%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, n+1, n+2)

	rows, err := r.db.QueryContext(ctx, q, append(args, page.Size, page.Offset())...)
	if err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	items := []model.HistoryEntry{}
	for rows.Next() {
		var e model.HistoryEntry
		var symptoms pq.StringArray
		if err := rows.Scan(
			&e.ID,
			&e.ProblemType,
			&e.Cause,
			&e.Solution,
			&e.Confidence,
			&symptoms,
			&e.CreatedAt,
		); err != nil {
			return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("scanning history: %w", err)
		}
		e.Symptoms = []string(symptoms)
		if e.Symptoms == nil {
			e.Symptoms = []string{}
		}
		e.CreatedAt = e.CreatedAt.UTC()
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("iterating history: %w", err)
	}

	return outbound.PageResult[model.HistoryEntry]{
		Items:      items,
		TotalCount: total,
		Page:       page.Page,
		Size:       page.Size,
	}, nil
}

func (r *HistoryRepo) Ping(ctx context.Context) error { return r.db.PingContext(ctx) }

func buildWhere(f outbound.HistoryFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(cond, len(args)))
	}

	if f.ProblemType != "" {
		add("problem_type = $%d", f.ProblemType)
	}
	if f.Cause != "" {
		add("cause = $%d", f.Cause)
	}
	if f.Since != nil {
		add("created_at >= $%d", f.Since.UTC())
	}
	if f.Until != nil {
		add("created_at <= $%d", f.Until.UTC())
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
