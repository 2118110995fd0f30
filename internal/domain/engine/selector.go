package engine

import (
	"cmp"
	"slices"

	"github.com/jonny/edudiag/internal/domain/model"
)

// Collect returns every diagnosis in the store in assertion order.
func Collect(store *Store) []model.Diagnosis {
	entries := store.Query(model.KindDiagnosis, nil)
	out := make([]model.Diagnosis, 0, len(entries))
	for _, e := range entries {
		if d, ok := e.Fact.(model.Diagnosis); ok {
			out = append(out, d)
		}
	}
	return out
}

// Best returns the diagnosis with the highest confidence; ties go to the
// earliest asserted. It returns model.ErrNoDiagnosis for an empty sequence.
func Best(diagnoses []model.Diagnosis) (model.Diagnosis, error) {
	if len(diagnoses) == 0 {
		return model.Diagnosis{}, model.ErrNoDiagnosis
	}
	best := diagnoses[0]
	for _, d := range diagnoses[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return best, nil
}

// Rank returns a copy of diagnoses ordered by descending confidence, keeping
// assertion order among equal confidences.
func Rank(diagnoses []model.Diagnosis) []model.Diagnosis {
	out := slices.Clone(diagnoses)
	slices.SortStableFunc(out, func(a, b model.Diagnosis) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return out
}

// Diagnoses returns the session's derived diagnoses in assertion order.
func (s *Session) Diagnoses() []model.Diagnosis {
	return Collect(s.store)
}

// Best returns the session's best diagnosis.
func (s *Session) Best() (model.Diagnosis, error) {
	return Best(s.Diagnoses())
}
