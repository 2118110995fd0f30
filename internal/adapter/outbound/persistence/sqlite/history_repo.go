package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

// HistoryRepo implements outbound.HistoryRepository using SQLite.
type HistoryRepo struct {
	db *sql.DB
}

// NewHistoryRepo creates a new HistoryRepo backed by the given store.
func NewHistoryRepo(store *Store) *HistoryRepo {
	return &HistoryRepo{db: store.DB}
}

// Append inserts one history row.
func (r *HistoryRepo) Append(ctx context.Context, e model.HistoryEntry) error {
	symptoms, err := marshalSymptoms(e.Symptoms)
	if err != nil {
		return fmt.Errorf("marshaling symptoms: %w", err)
	}

	const q = `INSERT INTO history
		(id, problem_type, cause, solution, confidence, symptoms, created_at)
		VALUES (?,?,?,?,?,?,?)`

	_, err = r.db.ExecContext(ctx, q,
		e.ID, e.ProblemType, e.Cause, e.Solution, e.Confidence,
		symptoms, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting history entry: %w", err)
	}
	return nil
}

// List returns a filtered page of entries, newest first.
func (r *HistoryRepo) List(ctx context.Context, filter outbound.HistoryFilter, page outbound.PageRequest) (outbound.PageResult[model.HistoryEntry], error) {
	page = page.Normalize()
	where, args := buildHistoryWhere(filter)

	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM history"+where, args...).Scan(&total); err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("counting history: %w", err)
	}

	dataQ := `SELECT id, problem_type, cause, solution, confidence, symptoms, created_at
		FROM history` + where + ` ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, dataQ, append(args, page.Size, page.Offset())...)
	if err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("listing history: %w", err)
	}
	defer rows.Close()

	items := []model.HistoryEntry{}
	for rows.Next() {
		e, err := scanHistory(rows)
		if err != nil {
			return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("scanning history: %w", err)
		}
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

// --- helpers ---

type historyScanner interface {
	Scan(dest ...any) error
}

func scanHistory(s historyScanner) (model.HistoryEntry, error) {
	var e model.HistoryEntry
	var symptomsJSON string
	err := s.Scan(&e.ID, &e.ProblemType, &e.Cause, &e.Solution, &e.Confidence, &symptomsJSON, &e.CreatedAt)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	if err := json.Unmarshal([]byte(symptomsJSON), &e.Symptoms); err != nil || e.Symptoms == nil {
		e.Symptoms = []string{}
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

func buildHistoryWhere(f outbound.HistoryFilter) (string, []any) {
	var clauses []string
	var args []any

	if f.ProblemType != "" {
		clauses = append(clauses, "problem_type = ?")
		args = append(args, f.ProblemType)
	}
	if f.Cause != "" {
		clauses = append(clauses, "cause = ?")
		args = append(args, f.Cause)
	}
	if f.Since != nil {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}
	if f.Until != nil {
		clauses = append(clauses, "created_at <= ?")
		args = append(args, f.Until.UTC())
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func marshalSymptoms(s []string) (string, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
