package engine

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jonny/edudiag/internal/domain/model"
)

// Firing records one rule firing.
type Firing struct {
	Rule      string
	Facts     []FactID
	Diagnosis FactID
	Fallback  bool
}

// Session evaluates a RuleSet against its own Store. Sessions are created per
// diagnostic call and discarded afterwards; they share nothing but the
// immutable RuleSet.
type Session struct {
	rules   *RuleSet
	store   *Store
	fired   map[string]struct{}
	firings []Firing
	logger  *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for firing and non-match events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSession creates a session with an empty store.
func NewSession(rs *RuleSet, opts ...Option) *Session {
	s := &Session{
		rules:  rs,
		store:  NewStore(),
		fired:  make(map[string]struct{}),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Declare adds a caller-supplied fact. Diagnoses are derived only and cannot
// be declared.
func (s *Session) Declare(f model.Fact) (FactID, error) {
	if f != nil && f.Kind() == model.KindDiagnosis {
		return 0, &model.ValidationError{Kind: model.KindDiagnosis, Reason: "is derived and cannot be declared"}
	}
	return s.store.Declare(f)
}

// Store exposes the session's working memory for queries.
func (s *Session) Store() *Store { return s.store }

// Firings returns the firings of the session in order.
func (s *Session) Firings() []Firing {
	out := make([]Firing, len(s.firings))
	copy(out, s.firings)
	return out
}

// Run fires eligible rules until none remains and returns the number of
// firings made by this call. Positive rules run to a fixpoint first; fallback
// rules are then considered, rescanning after every firing. Among eligible
// rules the earliest in the catalog fires first, and among bindings of one
// rule the earliest declared facts come first.
func (s *Session) Run() (int, error) {
	if err := s.store.DeclareDefaults(); err != nil {
		return 0, fmt.Errorf("declaring default facts: %w", err)
	}

	n := 0
	for _, phase := range [][]int{s.rules.positive, s.rules.fallback} {
		for {
			act, ok := s.next(phase)
			if !ok {
				break
			}
			if err := s.fire(act); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

type activation struct {
	rule     int
	facts    []FactID
	bindings Bindings
	key      string
}

// next returns the first eligible activation among the given rule indices.
func (s *Session) next(phase []int) (activation, bool) {
	for _, ri := range phase {
		r := &s.rules.rules[ri]
		var found activation
		ok := false
		s.match(r, 0, Bindings{}, nil, func(b Bindings, ids []FactID) bool {
			key := activationKey(ri, ids)
			if _, done := s.fired[key]; done {
				return true
			}
			if !s.passes(r, b) {
				return true
			}
			found = activation{rule: ri, facts: ids, bindings: b, key: key}
			ok = true
			return false
		})
		if ok {
			return found, true
		}
	}
	return activation{}, false
}

// match walks the clause list depth-first, calling visit for each complete
// binding. It returns false once visit asks to stop.
func (s *Session) match(r *Rule, ci int, b Bindings, ids []FactID, visit func(Bindings, []FactID) bool) bool {
	if ci == len(r.Clauses) {
		return visit(b, ids)
	}
	c := r.Clauses[ci]

	if c.Negated {
		blocked := s.store.Exists(c.Kind, func(f model.Fact) bool {
			_, ok := c.unify(f, b)
			return ok
		})
		if blocked {
			return true
		}
		return s.match(r, ci+1, b, ids, visit)
	}

	for _, e := range s.store.Query(c.Kind, nil) {
		nb, ok := c.unify(e.Fact, b)
		if !ok {
			continue
		}
		next := append(ids[:len(ids):len(ids)], e.ID)
		if !s.match(r, ci+1, nb, next, visit) {
			return false
		}
	}
	return true
}

// passes evaluates the rule's tests. Errors count as a non-match.
func (s *Session) passes(r *Rule, b Bindings) bool {
	for i, t := range r.Tests {
		ok, err := t(b)
		if err != nil {
			s.logger.Debug("rule test did not match",
				"rule", r.Name,
				"test", i,
				"error", err,
			)
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

func (s *Session) fire(act activation) error {
	r := &s.rules.rules[act.rule]
	s.fired[act.key] = struct{}{}

	d, err := r.Action(act.bindings)
	if err != nil {
		return fmt.Errorf("rule %s: building diagnosis: %w", r.Name, err)
	}
	id, err := s.store.Declare(d)
	if err != nil {
		return fmt.Errorf("rule %s: asserting diagnosis: %w", r.Name, err)
	}

	s.firings = append(s.firings, Firing{
		Rule:      r.Name,
		Facts:     act.facts,
		Diagnosis: id,
		Fallback:  r.Fallback(),
	})
	s.logger.Debug("rule fired",
		"rule", r.Name,
		"problem_type", d.ProblemType,
		"cause", d.Cause,
		"confidence", d.Confidence,
	)
	return nil
}

func activationKey(rule int, ids []FactID) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(rule))
	for _, id := range ids {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(int(id)))
	}
	return sb.String()
}
