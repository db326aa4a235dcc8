package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/boxoffice/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:", testutil.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_Migrates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
	require.NoError(t, s.Close())

	// Reopening applies nothing new and keeps existing rows.
	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	v, err = s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestRunLifecycle(t *testing.T) {
	tests := []struct {
		name   string
		record func(t *testing.T, s *Store, run *Run)
		status Status
		errMsg string
		want   int
	}{
		{
			name: "completed",
			record: func(t *testing.T, s *Store, run *Run) {
				require.NoError(t, s.RecordChallenge(context.Background(), run.ID, 1, "read-data", 20*time.Millisecond, nil))
				require.NoError(t, s.RecordChallenge(context.Background(), run.ID, 2, "inspect", 5*time.Millisecond, nil))
			},
			status: StatusCompleted,
			want:   2,
		},
		{
			name: "failed",
			record: func(t *testing.T, s *Store, run *Run) {
				require.NoError(t, s.RecordChallenge(context.Background(), run.ID, 1, "read-data", time.Millisecond, nil))
				require.NoError(t, s.RecordChallenge(context.Background(), run.ID, 2, "inspect", time.Millisecond, errors.New("boom")))
			},
			status: StatusFailed,
			errMsg: "challenge 2 (inspect): boom",
			want:   1,
		},
		{
			name:   "stopped before first",
			record: func(*testing.T, *Store, *Run) {},
			status: StatusStopped,
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := setupTestStore(t)

			run, err := s.CreateRun(ctx, "session-1", "1,2", 2)
			require.NoError(t, err)
			assert.NotEmpty(t, run.ID)
			assert.Equal(t, StatusRunning, run.Status)
			assert.Zero(t, run.Duration())

			tt.record(t, s, run)
			require.NoError(t, s.CompleteRun(ctx, run.ID, tt.status, tt.errMsg))

			got, err := s.GetRun(ctx, run.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.errMsg, got.Error)
			assert.Equal(t, tt.want, got.Completed)
			assert.Equal(t, 2, got.Planned)
			assert.Equal(t, "session-1", got.SessionID)
			require.NotNil(t, got.Finished)
			assert.GreaterOrEqual(t, got.Duration(), time.Duration(0))
		})
	}
}

func TestListChallengeRuns(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	run, err := s.CreateRun(ctx, "session-1", "", 3)
	require.NoError(t, err)
	require.NoError(t, s.RecordChallenge(ctx, run.ID, 3, "describe", 1500*time.Millisecond, nil))
	require.NoError(t, s.RecordChallenge(ctx, run.ID, 1, "read-data", 2*time.Millisecond, nil))
	require.NoError(t, s.RecordChallenge(ctx, run.ID, 2, "inspect", 0, errors.New("bad")))

	crs, err := s.ListChallengeRuns(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, crs, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{crs[0].Number, crs[1].Number, crs[2].Number})
	assert.Equal(t, StatusFailed, crs[1].Status)
	assert.Equal(t, "bad", crs[1].Error)
	assert.Equal(t, 1500*time.Millisecond, crs[2].Duration)
}

func TestListRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	var ids []string
	for range 3 {
		run, err := s.CreateRun(ctx, "s", "", 17)
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	latest, err := s.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, ids[2], latest.ID)
}

func TestLatestRun_Empty(t *testing.T) {
	latest, err := setupTestStore(t).LatestRun(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestGetRun_Prefix(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	run, err := s.CreateRun(ctx, "s", "", 1)
	require.NoError(t, err)

	got, err := s.GetRun(ctx, run.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)

	_, err = s.GetRun(ctx, "does-not-exist")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")

	_, err = s.CreateRun(ctx, "s", "", 1)
	require.NoError(t, err)
	_, err = s.GetRun(ctx, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestCompleteRun_Missing(t *testing.T) {
	err := setupTestStore(t).CompleteRun(context.Background(), "nope", StatusCompleted, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestPrune(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	var last string
	for range 4 {
		run, err := s.CreateRun(ctx, "s", "", 1)
		require.NoError(t, err)
		require.NoError(t, s.RecordChallenge(ctx, run.ID, 1, "read-data", 0, nil))
		last = run.ID
	}

	n, err := s.Prune(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, last, runs[0].ID)
	assert.Equal(t, 1, runs[0].Completed)

	_, err = s.Prune(ctx, -1)
	assert.Error(t, err)
}
