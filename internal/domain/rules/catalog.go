// Package rules holds the diagnostic rule catalog, one module per symptom
// category. Each category ends with a fallback that asserts an unknown cause
// when none of its specific rules fired.
package rules

import (
	"sync"

	"github.com/jonny/edudiag/internal/domain/engine"
	"github.com/jonny/edudiag/internal/domain/model"
)

// Fallback confidences. Specific rules always score above CategoryFallbackConfidence.
const (
	CategoryFallbackConfidence = 0.40
	GenericFallbackConfidence  = 0.30
)

// Rules returns the full catalog in firing order: login, video, chat and
// content modules followed by the generic fallback.
func Rules() []engine.Rule {
	var all []engine.Rule
	for _, module := range []func() []engine.Rule{
		loginRules,
		videoRules,
		chatRules,
		contentRules,
		genericRules,
	} {
		all = append(all, module()...)
	}
	return all
}

var catalog = sync.OnceValue(func() *engine.RuleSet {
	return engine.MustRuleSet(Rules()...)
})

// Catalog returns the shared, immutable rule set.
func Catalog() *engine.RuleSet {
	return catalog()
}

// genericRules covers symptom types outside the known categories.
func genericRules() []engine.Rule {
	return []engine.Rule{
		{
			Name: "generic_fallback",
			Clauses: when(
				engine.Match(model.KindSymptom, engine.Bind("type", "type")),
				engine.Absent(model.KindDiagnosis, engine.Bind("problem_type", "type")),
			),
			Action: engine.ConcludeFor("type", model.CauseUnknown,
				"We could not identify the cause of this problem. Contact support with a description of what happened.", GenericFallbackConfidence),
		},
	}
}
