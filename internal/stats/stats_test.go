package stats

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(runID string, tick, score int) Stats {
	s := New(1, 2, tick, "play")
	s.RunID = runID
	s.Score = score
	s.Path = []string{"observe", "fork_ball"}
	return s
}

func TestCloneDoesNotShare(t *testing.T) {
	v := 1.5
	s := record("r", 1, 10)
	s.TimeToScore = &v
	c := s.Clone()
	c.Path[0] = "jump"
	*c.TimeToScore = 3

	assert.Equal(t, "observe", s.Path[0])
	assert.Equal(t, 1.5, *s.TimeToScore)
}

func TestUpdateCopiesProgress(t *testing.T) {
	s := New(1, 2, 3, "play")
	other := record("r", 3, 0)
	other.Iteration = 7
	other.TotalMicroTicks = 100
	s.Update(other)
	other.Path[0] = "changed"

	assert.Equal(t, []string{"observe", "fork_ball"}, s.Path)
	assert.Equal(t, 7, s.Iteration)
	assert.Equal(t, 100, s.TotalMicroTicks)
}

func TestNewRunIDIsUnique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
	assert.Len(t, NewRunID(), 36)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(3)
	for tick := 1; tick <= 4; tick++ {
		require.NoError(t, m.Record(ctx, record("a", tick, tick*10)))
	}
	require.NoError(t, m.Record(ctx, record("b", 9, 5)))

	got, err := m.List(ctx, "a", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].CurrentTick)
	assert.Equal(t, 4, got[1].CurrentTick)

	all, err := m.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[1].RunID)

	_, err = m.List(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	runs, err := m.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, RunSummary{RunID: "a", Count: 4, MeanScore: 25, LastTick: 4}, runs[0])
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "stats.db"))
	require.NoError(t, s.Init(ctx))
	require.NoError(t, s.Init(ctx))
	defer s.Close()

	for tick := 1; tick <= 3; tick++ {
		require.NoError(t, s.Record(ctx, record("a", tick, tick)))
	}
	require.NoError(t, s.Record(ctx, record("b", 1, 7)))

	got, err := s.List(ctx, "a", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].CurrentTick)
	assert.Equal(t, 3, got[1].CurrentTick)
	assert.Equal(t, []string{"observe", "fork_ball"}, got[1].Path)

	_, err = s.List(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	runs, err := s.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].RunID)
	assert.Equal(t, 3, runs[0].Count)
	assert.InDelta(t, 2, runs[0].MeanScore, 1e-9)
	assert.Equal(t, 3, runs[0].LastTick)
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "stats.db"))
	assert.Error(t, s.Record(context.Background(), record("a", 1, 1)))
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestHTTPSinkRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	var got Stats
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "/v1/stats", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, NewHTTPSink(srv.URL).Record(context.Background(), record("a", 5, 1)))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 5, got.CurrentTick)
}

func TestHTTPSinkStopsOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	assert.Error(t, NewHTTPSink(srv.URL).Record(context.Background(), record("a", 5, 1)))
	assert.Equal(t, int32(1), calls.Load())
}
