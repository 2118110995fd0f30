package outbound

import "time"

// RunObservation summarises one engine run.
type RunObservation struct {
	ProblemType string
	Cause       string
	Fallback    bool
	RulesFired  int
	Duration    time.Duration
	Err         error
}

// Recorder receives run observations for metrics.
type Recorder interface {
	ObserveRun(obs RunObservation)
	ObserveHistoryAppend(err error)
	ObserveEscalation(err error)
}
