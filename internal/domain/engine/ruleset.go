package engine

import (
	"fmt"
	"strings"

	"github.com/jonny/edudiag/internal/domain/model"
)

// RuleSet is a validated, immutable rule catalog. It holds no session state
// and may be shared by concurrent sessions.
type RuleSet struct {
	rules    []Rule
	positive []int
	fallback []int
}

// NewRuleSet validates rules and fixes their firing order to the given order.
//
// Positive rules may only read input facts, so each fires at most once per
// binding. Fallback rules must guard on the absence of a Diagnosis, so their
// own assertion disables them.
func NewRuleSet(rules ...Rule) (*RuleSet, error) {
	var errs []string
	seen := make(map[string]bool, len(rules))

	rs := &RuleSet{rules: make([]Rule, len(rules))}
	copy(rs.rules, rules)

	for i, r := range rs.rules {
		name := r.Name
		if name == "" {
			name = fmt.Sprintf("#%d", i)
			errs = append(errs, fmt.Sprintf("rule %s: name is required", name))
		} else if seen[name] {
			errs = append(errs, fmt.Sprintf("rule %s: duplicate name", name))
		}
		seen[name] = true

		if r.Action == nil {
			errs = append(errs, fmt.Sprintf("rule %s: action is required", name))
		}
		if len(r.Clauses) == 0 || r.Clauses[0].Negated {
			errs = append(errs, fmt.Sprintf("rule %s: must start with a positive clause", name))
		}
		for j, c := range r.Clauses {
			switch {
			case c.Negated && c.Kind != model.KindDiagnosis:
				errs = append(errs, fmt.Sprintf("rule %s: clause %d negates %s; only diagnosis absence is supported", name, j, c.Kind))
			case !c.Negated && c.Kind == model.KindDiagnosis:
				errs = append(errs, fmt.Sprintf("rule %s: clause %d reads derived diagnoses", name, j))
			}
		}

		if r.Fallback() {
			rs.fallback = append(rs.fallback, i)
		} else {
			rs.positive = append(rs.positive, i)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid rule set:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return rs, nil
}

// MustRuleSet is like NewRuleSet but panics on an invalid catalog. It is meant
// for package-level catalogs assembled from literals.
func MustRuleSet(rules ...Rule) *RuleSet {
	rs, err := NewRuleSet(rules...)
	if err != nil {
		panic(err)
	}
	return rs
}

// Rules returns a copy of the rules in firing order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

func (rs *RuleSet) Len() int { return len(rs.rules) }

// Fallbacks returns the names of the fallback rules in firing order.
func (rs *RuleSet) Fallbacks() []string {
	out := make([]string, 0, len(rs.fallback))
	for _, i := range rs.fallback {
		out = append(out, rs.rules[i].Name)
	}
	return out
}
