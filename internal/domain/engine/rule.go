package engine

import (
	"errors"
	"fmt"

	"github.com/jonny/edudiag/internal/domain/model"
)

var (
	// ErrUnbound is returned when a test reads a variable no clause captured.
	ErrUnbound = errors.New("variable not bound")
	// ErrAbsent is returned when a captured optional field was not supplied.
	ErrAbsent = errors.New("field absent")
	// ErrType is returned when a bound value has an unexpected type.
	ErrType = errors.New("unexpected value type")
)

type op int

const (
	opEq op = iota
	opIn
	opBind
)

// Constraint restricts one field of a fact clause.
type Constraint struct {
	Field string
	op    op
	value any
	set   []any
	name  string
}

// Eq requires field to be present and equal to v.
func Eq(field string, v any) Constraint {
	return Constraint{Field: field, op: opEq, value: v}
}

// In requires field to be present and equal to one of vs.
func In(field string, vs ...any) Constraint {
	return Constraint{Field: field, op: opIn, set: vs}
}

// Bind captures field under name. An absent optional field is captured as nil.
// When name is already bound by an earlier clause the values must be equal.
func Bind(field, name string) Constraint {
	return Constraint{Field: field, op: opBind, name: name}
}

// Clause matches facts of one kind. A negated clause holds only while no fact
// of the kind satisfies its constraints.
type Clause struct {
	Kind        model.FactKind
	Constraints []Constraint
	Negated     bool
}

// Match builds a positive clause.
func Match(kind model.FactKind, cs ...Constraint) Clause {
	return Clause{Kind: kind, Constraints: cs}
}

// Absent builds a negated clause.
func Absent(kind model.FactKind, cs ...Constraint) Clause {
	return Clause{Kind: kind, Constraints: cs, Negated: true}
}

// unify checks f against the clause under b, returning b extended with any
// new captures.
func (c Clause) unify(f model.Fact, b Bindings) (Bindings, bool) {
	out := b
	for _, con := range c.Constraints {
		v, ok := f.Field(con.Field)
		switch con.op {
		case opEq:
			if !ok || v != con.value {
				return nil, false
			}
		case opIn:
			if !ok || !contains(con.set, v) {
				return nil, false
			}
		case opBind:
			if !ok {
				v = nil
			}
			if bound, exists := out[con.name]; exists {
				if bound != v {
					return nil, false
				}
				continue
			}
			out = out.with(con.name, v)
		}
	}
	return out, true
}

func contains(set []any, v any) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Bindings holds the values captured by a rule's clauses.
type Bindings map[string]any

func (b Bindings) with(name string, v any) Bindings {
	out := make(Bindings, len(b)+1)
	for k, val := range b {
		out[k] = val
	}
	out[name] = v
	return out
}

// Value returns the value bound to name.
func (b Bindings) Value(name string) (any, error) {
	v, ok := b[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnbound)
	}
	if v == nil {
		return nil, fmt.Errorf("%q: %w", name, ErrAbsent)
	}
	return v, nil
}

func (b Bindings) String(name string) (string, error) {
	v, err := b.Value(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%q is %T: %w", name, v, ErrType)
	}
	return s, nil
}

func (b Bindings) Int(name string) (int, error) {
	v, err := b.Value(name)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int)
	if !ok {
		return 0, fmt.Errorf("%q is %T: %w", name, v, ErrType)
	}
	return i, nil
}

func (b Bindings) Bool(name string) (bool, error) {
	v, err := b.Value(name)
	if err != nil {
		return false, err
	}
	t, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%q is %T: %w", name, v, ErrType)
	}
	return t, nil
}

// Test is a predicate over a rule's bindings. A test that returns an error is
// treated as not matching.
type Test func(b Bindings) (bool, error)

// Action builds the diagnosis a rule asserts.
type Action func(b Bindings) (model.Diagnosis, error)

// Rule pairs ordered clauses and tests with the diagnosis it asserts.
type Rule struct {
	Name     string
	Category string
	Clauses  []Clause
	Tests    []Test
	Action   Action
}

// Fallback reports whether the rule depends on the absence of a fact.
func (r Rule) Fallback() bool {
	for _, c := range r.Clauses {
		if c.Negated {
			return true
		}
	}
	return false
}

// Conclude asserts a fixed diagnosis.
func Conclude(problemType, cause, solution string, confidence float64) Action {
	d := model.Diagnosis{
		ProblemType: problemType,
		Cause:       cause,
		Solution:    solution,
		Confidence:  confidence,
	}
	return func(Bindings) (model.Diagnosis, error) { return d, nil }
}

// ConcludeFor asserts a diagnosis whose problem type is read from the string
// bound to name.
func ConcludeFor(name, cause, solution string, confidence float64) Action {
	return func(b Bindings) (model.Diagnosis, error) {
		pt, err := b.String(name)
		if err != nil {
			return model.Diagnosis{}, err
		}
		return model.Diagnosis{
			ProblemType: pt,
			Cause:       cause,
			Solution:    solution,
			Confidence:  confidence,
		}, nil
	}
}
