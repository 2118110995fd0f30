package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/edudiag/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/edudiag/internal/domain/model"
	"github.com/jonny/edudiag/internal/domain/port/outbound"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(sqlite.Config{
		Path:              filepath.Join(t.TempDir(), "history", "edudiag.db"),
		MaxOpenConns:      1,
		PragmaJournalMode: "WAL",
		PragmaBusyTimeout: 5000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func makeEntry(problemType, cause string, at time.Time) model.HistoryEntry {
	e := model.NewHistoryEntry(model.Diagnosis{
		ProblemType: problemType,
		Cause:       cause,
		Solution:    "try again",
		Confidence:  0.8,
	}, []string{problemType + ": something broke"})
	e.CreatedAt = at
	return e
}

func TestNewStore_InvalidJournalMode(t *testing.T) {
	_, err := sqlite.NewStore(sqlite.Config{Path: ":memory:", PragmaJournalMode: "bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid pragma journal mode")
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edudiag.db")
	cfg := sqlite.Config{Path: path, MaxOpenConns: 1, PragmaBusyTimeout: 1000}

	first, err := sqlite.NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := sqlite.NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestHistoryRepo_AppendAndList(t *testing.T) {
	repo := sqlite.NewHistoryRepo(newTestStore(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	older := makeEntry("login", "password", base)
	newer := makeEntry("video", "bandwidth", base.Add(time.Minute))
	require.NoError(t, repo.Append(ctx, older))
	require.NoError(t, repo.Append(ctx, newer))

	res, err := repo.List(ctx, outbound.HistoryFilter{}, outbound.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.TotalCount)
	require.Len(t, res.Items, 2)
	assert.Equal(t, newer.ID, res.Items[0].ID)
	assert.Equal(t, older.ID, res.Items[1].ID)

	got := res.Items[1]
	assert.Equal(t, "password", got.Cause)
	assert.Equal(t, "try again", got.Solution)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)
	assert.Equal(t, []string{"login: something broke"}, got.Symptoms)
	assert.True(t, got.CreatedAt.Equal(base))
}

func TestHistoryRepo_ListFilters(t *testing.T) {
	repo := sqlite.NewHistoryRepo(newTestStore(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, makeEntry("login", "password", base)))
	require.NoError(t, repo.Append(ctx, makeEntry("login", "server", base.Add(time.Hour))))
	require.NoError(t, repo.Append(ctx, makeEntry("chat", "unknown", base.Add(2*time.Hour))))

	res, err := repo.List(ctx, outbound.HistoryFilter{ProblemType: "login"}, outbound.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.TotalCount)

	res, err = repo.List(ctx, outbound.HistoryFilter{ProblemType: "login", Cause: "server"}, outbound.PageRequest{})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "server", res.Items[0].Cause)

	since := base.Add(30 * time.Minute)
	res, err = repo.List(ctx, outbound.HistoryFilter{Since: &since}, outbound.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.TotalCount)
}

func TestHistoryRepo_Pagination(t *testing.T) {
	repo := sqlite.NewHistoryRepo(newTestStore(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := range 5 {
		require.NoError(t, repo.Append(ctx, makeEntry("content", "unknown", base.Add(time.Duration(i)*time.Minute))))
	}

	res, err := repo.List(ctx, outbound.HistoryFilter{}, outbound.PageRequest{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 5, res.TotalCount)
	assert.Equal(t, 2, res.Page)
	require.Len(t, res.Items, 2)
	assert.True(t, res.Items[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	res, err = repo.List(ctx, outbound.HistoryFilter{}, outbound.PageRequest{Page: 9, Size: 2})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
}

func TestHistoryRepo_DuplicateID(t *testing.T) {
	repo := sqlite.NewHistoryRepo(newTestStore(t))
	ctx := context.Background()

	e := makeEntry("chat", "network", time.Now().UTC())
	require.NoError(t, repo.Append(ctx, e))
	assert.Error(t, repo.Append(ctx, e))
}

func TestHistoryRepo_Ping(t *testing.T) {
	repo := sqlite.NewHistoryRepo(newTestStore(t))
	assert.NoError(t, repo.Ping(context.Background()))
}
