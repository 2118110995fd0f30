package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonny/edudiag/internal/domain/engine"
	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/inbound"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

// ErrHistoryDisabled is returned by History when no repository is configured.
var ErrHistoryDisabled = errors.New("diagnosis history is disabled")

// Diagnoser runs the rule catalog for each request in a fresh engine session
// and wires the result to history, escalation and metrics.
type Diagnoser struct {
	rules      *engine.RuleSet
	history    outbound.HistoryRepository
	notifier   outbound.Notifier
	probe      outbound.StatusProbe
	recorder   outbound.Recorder
	escalation EscalationPolicy
	logger     *slog.Logger
}

// Option configures optional Diagnoser collaborators.
type Option func(*Diagnoser)

func WithStatusProbe(p outbound.StatusProbe) Option {
	return func(d *Diagnoser) { d.probe = p }
}

func WithRecorder(r outbound.Recorder) Option {
	return func(d *Diagnoser) { d.recorder = r }
}

func WithEscalationPolicy(p EscalationPolicy) Option {
	return func(d *Diagnoser) { d.escalation = p }
}

// NewDiagnoser creates a Diagnoser. history and notifier may be nil to
// disable persistence and escalation.
func NewDiagnoser(
	rules *engine.RuleSet,
	history outbound.HistoryRepository,
	notifier outbound.Notifier,
	logger *slog.Logger,
	opts ...Option,
) *Diagnoser {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Diagnoser{
		rules:      rules,
		history:    history,
		notifier:   notifier,
		escalation: DefaultEscalationPolicy(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ensure Diagnoser satisfies the inbound port at compile time.
var _ inbound.Diagnoser = (*Diagnoser)(nil)

// Diagnose implements inbound.Diagnoser.
func (d *Diagnoser) Diagnose(ctx context.Context, req model.DiagnoseRequest) ([]model.Diagnosis, error) {
	session, err := d.run(ctx, req)
	if err != nil {
		return nil, err
	}
	diags := session.Diagnoses()
	if len(diags) == 0 {
		return nil, model.ErrNoDiagnosis
	}
	return diags, nil
}

// Best implements inbound.Diagnoser. When persisting fails the diagnosis is
// still returned together with the error.
func (d *Diagnoser) Best(ctx context.Context, req model.DiagnoseRequest, persist bool) (model.Diagnosis, error) {
	session, err := d.run(ctx, req)
	if err != nil {
		return model.Diagnosis{}, err
	}
	best, err := session.Best()
	if err != nil {
		return model.Diagnosis{}, err
	}

	var entryID string
	var persistErr error
	if persist && d.history != nil {
		entry := model.NewHistoryEntry(best, req.SymptomSummary())
		persistErr = d.history.Append(ctx, entry)
		d.observeHistory(persistErr)
		if persistErr != nil {
			d.logger.Error("failed to append diagnosis history", "error", persistErr)
			persistErr = fmt.Errorf("append history: %w", persistErr)
		} else {
			entryID = entry.ID
		}
	}

	d.escalate(ctx, req, best, entryID)
	return best, persistErr
}

// Symptoms implements inbound.Diagnoser.
func (d *Diagnoser) Symptoms() map[string][]string {
	return model.Vocabulary()
}

// History implements inbound.Diagnoser.
func (d *Diagnoser) History(ctx context.Context, filter outbound.HistoryFilter, page outbound.PageRequest) (outbound.PageResult[model.HistoryEntry], error) {
	if d.history == nil {
		return outbound.PageResult[model.HistoryEntry]{}, ErrHistoryDisabled
	}
	result, err := d.history.List(ctx, filter, page.Normalize())
	if err != nil {
		return outbound.PageResult[model.HistoryEntry]{}, fmt.Errorf("list history: %w", err)
	}
	return result, nil
}

// run declares the request's facts into a new session and evaluates it.
func (d *Diagnoser) run(ctx context.Context, req model.DiagnoseRequest) (*engine.Session, error) {
	start := time.Now()
	session := engine.NewSession(d.rules, engine.WithLogger(d.logger))

	for _, f := range req.Facts() {
		if _, err := session.Declare(f); err != nil {
			d.observeRun(outbound.RunObservation{Duration: time.Since(start), Err: err})
			return nil, fmt.Errorf("declare %s: %w", f.Kind(), err)
		}
	}

	if req.ServerStatus == nil && d.probe != nil {
		d.declareObservedStatus(ctx, session)
	}

	fired, err := session.Run()
	obs := outbound.RunObservation{RulesFired: fired, Duration: time.Since(start), Err: err}
	if err != nil {
		d.observeRun(obs)
		return nil, fmt.Errorf("run rules: %w", err)
	}

	if best, bestErr := session.Best(); bestErr == nil {
		obs.ProblemType = best.ProblemType
		obs.Cause = best.Cause
		obs.Fallback = best.IsFallback()
		d.logger.Info("diagnosis completed",
			"problem_type", best.ProblemType,
			"cause", best.Cause,
			"confidence", best.Confidence,
			"rules_fired", fired,
		)
	} else {
		obs.Err = bestErr
	}
	d.observeRun(obs)
	return session, nil
}

func (d *Diagnoser) declareObservedStatus(ctx context.Context, session *engine.Session) {
	status, err := d.probe.ServerStatus(ctx)
	if err != nil {
		d.logger.Warn("server status probe failed, using defaults", "error", err)
		return
	}
	if _, err := session.Declare(status); err != nil {
		d.logger.Warn("discarding invalid probed server status", "error", err)
	}
}

func (d *Diagnoser) escalate(ctx context.Context, req model.DiagnoseRequest, best model.Diagnosis, entryID string) {
	if d.notifier == nil {
		return
	}
	decision := d.escalation.Evaluate(req, best)
	if !decision.Escalate {
		return
	}

	err := d.notifier.NotifyDiagnosis(ctx, outbound.DiagnosisNotification{
		EntryID:     entryID,
		ProblemType: best.ProblemType,
		Cause:       best.Cause,
		Solution:    best.Solution,
		Confidence:  best.Confidence,
		Severity:    string(req.MaxSeverity()),
		Symptoms:    req.SymptomSummary(),
		Reason:      decision.Reason,
		Level:       decision.Level,
	})
	if d.recorder != nil {
		d.recorder.ObserveEscalation(err)
	}
	if err != nil {
		d.logger.Warn("failed to send escalation", "problem_type", best.ProblemType, "error", err)
	}
}

func (d *Diagnoser) observeRun(obs outbound.RunObservation) {
	if d.recorder != nil {
		d.recorder.ObserveRun(obs)
	}
}

func (d *Diagnoser) observeHistory(err error) {
	if d.recorder != nil {
		d.recorder.ObserveHistoryAppend(err)
	}
}
