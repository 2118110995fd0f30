package service_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
	"github.com/jonny/edudiag/internal/domain/rules"
	"github.com/jonny/edudiag/internal/domain/service"
)

// --- mock HistoryRepository ---

type mockHistoryRepo struct {
	mu      sync.Mutex
	entries []model.HistoryEntry
	err     error
}

func (m *mockHistoryRepo) Append(_ context.Context, e model.HistoryEntry) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockHistoryRepo) List(_ context.Context, f outbound.HistoryFilter, p outbound.PageRequest) (outbound.PageResult[model.HistoryEntry], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []model.HistoryEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if f.Matches(m.entries[i]) {
			items = append(items, m.entries[i])
		}
	}
	return outbound.PageResult[model.HistoryEntry]{Items: items, TotalCount: int64(len(items)), Page: p.Page, Size: p.Size}, nil
}

func (m *mockHistoryRepo) Ping(_ context.Context) error { return nil }

var _ outbound.HistoryRepository = (*mockHistoryRepo)(nil)

// --- mock Notifier ---

type mockNotifier struct {
	sent []outbound.DiagnosisNotification
	err  error
}

func (m *mockNotifier) NotifyDiagnosis(_ context.Context, n outbound.DiagnosisNotification) error {
	m.sent = append(m.sent, n)
	return m.err
}

var _ outbound.Notifier = (*mockNotifier)(nil)

// --- mock StatusProbe ---

type mockProbe struct {
	status model.ServerStatus
	err    error
}

func (m *mockProbe) ServerStatus(_ context.Context) (model.ServerStatus, error) {
	return m.status, m.err
}

func (m *mockProbe) HealthCheck(_ context.Context) error { return m.err }

// --- mock Recorder ---

type mockRecorder struct {
	runs        []outbound.RunObservation
	appends     []error
	escalations []error
}

func (m *mockRecorder) ObserveRun(obs outbound.RunObservation) { m.runs = append(m.runs, obs) }
func (m *mockRecorder) ObserveHistoryAppend(err error) { m.appends = append(m.appends, err) }
func (m *mockRecorder) ObserveEscalation(err error) { m.escalations = append(m.escalations, err) }

var _ outbound.Recorder = (*mockRecorder)(nil)

func newDiagnoser(history outbound.HistoryRepository, notifier outbound.Notifier, opts ...service.Option) *service.Diagnoser {
	return service.NewDiagnoser(rules.Catalog(), history, notifier, slog.New(slog.DiscardHandler), opts...)
}

func loginIE() model.DiagnoseRequest {
	return model.DiagnoseRequest{
		Symptoms:   []model.SymptomInput{{Type: "login", Description: "cannot_login"}},
		SystemInfo: &model.SystemInfoInput{Browser: "IE"},
	}
}

func TestDiagnoser_BestPersists(t *testing.T) {
	repo := &mockHistoryRepo{}
	rec := &mockRecorder{}
	d := newDiagnoser(repo, nil, service.WithRecorder(rec))

	best, err := d.Best(context.Background(), loginIE(), true)
	require.NoError(t, err)
	assert.Equal(t, "browser", best.Cause)
	assert.InDelta(t, 0.95, best.Confidence, 1e-9)

	require.Len(t, repo.entries, 1)
	entry := repo.entries[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, best, entry.Diagnosis())
	assert.Equal(t, []string{"login/cannot_login"}, entry.Symptoms)

	require.Len(t, rec.runs, 1)
	assert.Equal(t, "login", rec.runs[0].ProblemType)
	assert.False(t, rec.runs[0].Fallback)
	assert.Equal(t, 1, rec.runs[0].RulesFired)
	assert.Equal(t, []error{nil}, rec.appends)
}

func TestDiagnoser_BestWithoutPersist(t *testing.T) {
	repo := &mockHistoryRepo{}
	d := newDiagnoser(repo, nil)

	_, err := d.Best(context.Background(), loginIE(), false)
	require.NoError(t, err)
	assert.Empty(t, repo.entries)
}

func TestDiagnoser_PersistFailureKeepsDiagnosis(t *testing.T) {
	boom := errors.New("disk full")
	d := newDiagnoser(&mockHistoryRepo{err: boom}, nil)

	best, err := d.Best(context.Background(), loginIE(), true)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "login", best.ProblemType)
}

func TestDiagnoser_DiagnoseReturnsAll(t *testing.T) {
	d := newDiagnoser(nil, nil)
	req := model.DiagnoseRequest{
		Symptoms:     []model.SymptomInput{{Type: "content", Description: "broken_links"}},
		ServerStatus: &model.ServerStatusInput{LastMaintenance: ptr("recent release")},
	}

	diags, err := d.Diagnose(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, "link", diags[0].Cause)
	assert.Equal(t, "server", diags[1].Cause)
}

func TestDiagnoser_NoSymptoms(t *testing.T) {
	rec := &mockRecorder{}
	d := newDiagnoser(nil, nil, service.WithRecorder(rec))

	_, err := d.Best(context.Background(), model.DiagnoseRequest{}, true)
	assert.ErrorIs(t, err, model.ErrNoDiagnosis)

	_, err = d.Diagnose(context.Background(), model.DiagnoseRequest{})
	assert.ErrorIs(t, err, model.ErrNoDiagnosis)

	require.Len(t, rec.runs, 2)
	assert.ErrorIs(t, rec.runs[0].Err, model.ErrNoDiagnosis)
}

func TestDiagnoser_InvalidSymptom(t *testing.T) {
	d := newDiagnoser(nil, nil)
	req := model.DiagnoseRequest{Symptoms: []model.SymptomInput{{Type: "login"}}}

	_, err := d.Best(context.Background(), req, false)
	require.Error(t, err)
	assert.True(t, model.IsValidationError(err))
}

func TestDiagnoser_ProbeSuppliesServerStatus(t *testing.T) {
	probe := &mockProbe{status: model.ServerStatus{IsOnline: true, ReportedIssues: 12}}
	d := newDiagnoser(nil, nil, service.WithStatusProbe(probe))
	req := model.DiagnoseRequest{Symptoms: []model.SymptomInput{{Type: "chat", Description: "chat_lag"}}}

	best, err := d.Best(context.Background(), req, false)
	require.NoError(t, err)
	assert.Equal(t, "server", best.Cause)

	// An explicit status wins over the probe.
	issues := 0
	req.ServerStatus = &model.ServerStatusInput{ReportedIssues: &issues}
	best, err = d.Best(context.Background(), req, false)
	require.NoError(t, err)
	assert.Equal(t, model.CauseUnknown, best.Cause)
}

func TestDiagnoser_ProbeFailureUsesDefaults(t *testing.T) {
	d := newDiagnoser(nil, nil, service.WithStatusProbe(&mockProbe{err: errors.New("cluster unreachable")}))
	req := model.DiagnoseRequest{Symptoms: []model.SymptomInput{{Type: "chat", Description: "chat_lag"}}}

	best, err := d.Best(context.Background(), req, false)
	require.NoError(t, err)
	assert.True(t, best.IsFallback())
}

func TestDiagnoser_EscalatesServerCause(t *testing.T) {
	repo := &mockHistoryRepo{}
	notifier := &mockNotifier{}
	rec := &mockRecorder{}
	d := newDiagnoser(repo, notifier, service.WithRecorder(rec))

	offline := false
	req := model.DiagnoseRequest{
		Symptoms:     []model.SymptomInput{{Type: "login", Description: "cannot_login", Severity: "high"}},
		ServerStatus: &model.ServerStatusInput{IsOnline: &offline},
	}

	_, err := d.Best(context.Background(), req, true)
	require.NoError(t, err)

	require.Len(t, notifier.sent, 1)
	n := notifier.sent[0]
	assert.Equal(t, "server", n.Cause)
	assert.Equal(t, outbound.NotificationCritical, n.Level)
	assert.Equal(t, "high", n.Severity)
	assert.Equal(t, repo.entries[0].ID, n.EntryID)
	assert.Equal(t, []error{nil}, rec.escalations)
}

func TestDiagnoser_NotifierFailureIsIgnored(t *testing.T) {
	notifier := &mockNotifier{err: errors.New("slack down")}
	d := newDiagnoser(nil, notifier)
	req := model.DiagnoseRequest{
		Symptoms: []model.SymptomInput{{Type: "billing", Description: "charged_twice", Severity: "high"}},
	}

	best, err := d.Best(context.Background(), req, false)
	require.NoError(t, err)
	assert.Equal(t, "billing", best.ProblemType)
	assert.Len(t, notifier.sent, 1)
}

func TestDiagnoser_NoEscalationForResolvedCauses(t *testing.T) {
	notifier := &mockNotifier{}
	d := newDiagnoser(nil, notifier)

	_, err := d.Best(context.Background(), loginIE(), false)
	require.NoError(t, err)
	assert.Empty(t, notifier.sent)
}

func TestDiagnoser_History(t *testing.T) {
	repo := &mockHistoryRepo{}
	d := newDiagnoser(repo, nil)

	for _, req := range []model.DiagnoseRequest{
		loginIE(),
		{Symptoms: []model.SymptomInput{{Type: "content", Description: "access_denied_to_content"}}},
	} {
		_, err := d.Best(context.Background(), req, true)
		require.NoError(t, err)
	}

	page, err := d.History(context.Background(), outbound.HistoryFilter{}, outbound.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "content", page.Items[0].ProblemType)
	assert.Equal(t, outbound.DefaultPageSize, page.Size)

	page, err = d.History(context.Background(), outbound.HistoryFilter{ProblemType: "login"}, outbound.PageRequest{Page: 1, Size: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	_, err = newDiagnoser(nil, nil).History(context.Background(), outbound.HistoryFilter{}, outbound.PageRequest{})
	assert.ErrorIs(t, err, service.ErrHistoryDisabled)
}

func TestDiagnoser_ConcurrentCallsAreIsolated(t *testing.T) {
	d := newDiagnoser(nil, nil)
	reqs := []model.DiagnoseRequest{
		loginIE(),
		{Symptoms: []model.SymptomInput{{Type: "content", Description: "missing_files"}}},
		{Symptoms: []model.SymptomInput{{Type: "other", Description: "unknown_problem"}}},
	}
	want := []string{"login", "content", "other"}

	var wg sync.WaitGroup
	errs := make(chan error, 30)
	for i := range 30 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			diags, err := d.Diagnose(context.Background(), reqs[i%3])
			if err != nil {
				errs <- err
				return
			}
			for _, dg := range diags {
				if dg.ProblemType != want[i%3] {
					errs <- errors.New("leaked diagnosis " + dg.ProblemType)
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestDiagnoser_Symptoms(t *testing.T) {
	vocab := newDiagnoser(nil, nil).Symptoms()
	assert.Len(t, vocab, 4)
	assert.Contains(t, vocab["chat"], "chat_lag")
}

func TestEscalationPolicy_Evaluate(t *testing.T) {
	p := service.DefaultEscalationPolicy()
	high := model.DiagnoseRequest{Symptoms: []model.SymptomInput{{Type: "video", Description: "x", Severity: "high"}}}
	low := model.DiagnoseRequest{Symptoms: []model.SymptomInput{{Type: "video", Description: "x", Severity: "low"}}}
	fallback := model.Diagnosis{ProblemType: "video", Cause: model.CauseUnknown, Solution: "s", Confidence: 0.4}
	network := model.Diagnosis{ProblemType: "video", Cause: "network", Solution: "s", Confidence: 0.85}

	assert.True(t, p.Evaluate(high, fallback).Escalate)
	assert.Equal(t, outbound.NotificationWarning, p.Evaluate(high, fallback).Level)
	assert.False(t, p.Evaluate(low, fallback).Escalate)
	assert.False(t, p.Evaluate(high, network).Escalate)
	assert.False(t, service.EscalationPolicy{}.Evaluate(high, fallback).Escalate)
}

func ptr[T any](v T) *T { return &v }
