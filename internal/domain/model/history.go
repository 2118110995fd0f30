package model

import "time"

// HistoryEntry is one persisted best-diagnosis record.
type HistoryEntry struct {
	ID          string    `json:"id"`
	ProblemType string    `json:"diagnosis"`
	Cause       string    `json:"cause"`
	Solution    string    `json:"solution"`
	Confidence  float64   `json:"confidence"`
	Symptoms    []string  `json:"symptoms"`
	CreatedAt   time.Time `json:"timestamp"`
}

// NewHistoryEntry creates an entry for d with a generated ID and timestamp.
func NewHistoryEntry(d Diagnosis, symptoms []string) HistoryEntry {
	if symptoms == nil {
		symptoms = []string{}
	}
	return HistoryEntry{
		ID:          generateID(),
		ProblemType: d.ProblemType,
		Cause:       d.Cause,
		Solution:    d.Solution,
		Confidence:  d.Confidence,
		Symptoms:    symptoms,
		CreatedAt:   time.Now().UTC(),
	}
}

func (e HistoryEntry) Diagnosis() Diagnosis {
	return Diagnosis{
		ProblemType: e.ProblemType,
		Cause:       e.Cause,
		Solution:    e.Solution,
		Confidence:  e.Confidence,
	}
}
