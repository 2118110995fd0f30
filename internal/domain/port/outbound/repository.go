package outbound

import (
	"context"
	"time"

	"github.com/jonny/edudiag/internal/domain/model"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// PageRequest selects a 1-based page of results.
type PageRequest struct {
	Page int
	Size int
}

// Normalize clamps the request to a valid page and size.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the number of items skipped before the page.
func (p PageRequest) Offset() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Size
}

type PageResult[T any] struct {
	Items      []T
	TotalCount int64
	Page       int
	Size       int
}

type HistoryFilter struct {
	ProblemType string
	Cause       string
	Since       *time.Time
	Until       *time.Time
}

// Matches reports whether e satisfies the filter.
func (f HistoryFilter) Matches(e model.HistoryEntry) bool {
	if f.ProblemType != "" && e.ProblemType != f.ProblemType {
		return false
	}
	if f.Cause != "" && e.Cause != f.Cause {
		return false
	}
	if f.Since != nil && e.CreatedAt.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.CreatedAt.After(*f.Until) {
		return false
	}
	return true
}

// HistoryRepository stores best-diagnosis records. List returns entries
// newest first.
type HistoryRepository interface {
	Append(ctx context.Context, entry model.HistoryEntry) error
	List(ctx context.Context, filter HistoryFilter, page PageRequest) (PageResult[model.HistoryEntry], error)
	Ping(ctx context.Context) error
}
