// Package engine implements the fact-based forward-chaining evaluator used to
// diagnose reported issues: a per-session fact store, rule structs with
// conjunctive and negated clauses, a session that fires rules to a fixpoint,
// and the selector that ranks the derived diagnoses.
package engine

import (
	"github.com/jonny/edudiag/internal/domain/model"
)

// FactID is the stable handle of a declared fact. IDs increase in declaration
// order and are never reused within a store.
type FactID int

// Entry pairs a fact with its handle.
type Entry struct {
	ID   FactID
	Fact model.Fact
}

// Store is the working memory of one diagnostic session. Facts are never
// removed or mutated once declared. A Store is not safe for concurrent use.
type Store struct {
	entries []Entry
	byKind  map[model.FactKind][]int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{byKind: make(map[model.FactKind][]int)}
}

// singletonKinds may be declared at most once per store.
var singletonKinds = map[model.FactKind]bool{
	model.KindSystemInfo:   true,
	model.KindServerStatus: true,
}

// Declare validates f and adds it to the store.
func (s *Store) Declare(f model.Fact) (FactID, error) {
	if f == nil {
		return 0, &model.ValidationError{Reason: "fact is nil"}
	}
	if err := f.Validate(); err != nil {
		return 0, err
	}
	if singletonKinds[f.Kind()] && len(s.byKind[f.Kind()]) > 0 {
		return 0, &model.ValidationError{Kind: f.Kind(), Reason: "already declared for this session"}
	}

	id := FactID(len(s.entries) + 1)
	s.entries = append(s.entries, Entry{ID: id, Fact: f})
	s.byKind[f.Kind()] = append(s.byKind[f.Kind()], len(s.entries)-1)
	return id, nil
}

// DeclareDefaults declares an all-default SystemInfo and ServerStatus when the
// caller supplied none, so that exactly one of each is in effect.
func (s *Store) DeclareDefaults() error {
	if s.Count(model.KindSystemInfo) == 0 {
		if _, err := s.Declare(model.SystemInfo{}); err != nil {
			return err
		}
	}
	if s.Count(model.KindServerStatus) == 0 {
		if _, err := s.Declare(model.DefaultServerStatus()); err != nil {
			return err
		}
	}
	return nil
}

// Query returns, in declaration order, the facts of kind that satisfy filter.
// A nil filter matches every fact of the kind.
func (s *Store) Query(kind model.FactKind, filter func(model.Fact) bool) []Entry {
	idx := s.byKind[kind]
	out := make([]Entry, 0, len(idx))
	for _, i := range idx {
		e := s.entries[i]
		if filter == nil || filter(e.Fact) {
			out = append(out, e)
		}
	}
	return out
}

// Exists reports whether any fact of kind satisfies filter.
func (s *Store) Exists(kind model.FactKind, filter func(model.Fact) bool) bool {
	for _, i := range s.byKind[kind] {
		if filter == nil || filter(s.entries[i].Fact) {
			return true
		}
	}
	return false
}

// Get returns the fact declared under id.
func (s *Store) Get(id FactID) (model.Fact, bool) {
	if id < 1 || int(id) > len(s.entries) {
		return nil, false
	}
	return s.entries[id-1].Fact, true
}

// Count returns the number of facts of kind.
func (s *Store) Count(kind model.FactKind) int {
	return len(s.byKind[kind])
}

// Len returns the total number of declared facts.
func (s *Store) Len() int {
	return len(s.entries)
}
