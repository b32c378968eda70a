// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "logs", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, started time.Time, dual bool) types.RunResult {
	main := types.NewTrackResult(types.TrackMain, "market microstructure")
	main.State = types.StateDone
	main.Uploaded = true
	main.Location = "https://drive.example/a"
	main.Artifact = &types.Artifact{Filename: "Walter_Evans_Market_Microstructure_20250101.pdf"}
	main.Warnings = []string{"notify calendar: 401"}

	r := types.RunResult{
		RunID:      id,
		Topic:      "market microstructure",
		DualMode:   dual,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Minute),
		Tracks:     []*types.TrackResult{main},
		Success:    true,
	}
	if dual {
		derived := types.NewTrackResult(types.TrackDerived, "dark pools")
		derived.State = types.StateAborted
		derived.FatalError = "generate (fatal): model overloaded"
		r.Tracks = append(r.Tracks, derived)
		r.Success = false
	}
	return r
}

func TestRecordAndRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	started := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, sampleRun("run-a", started, true)))

	entries, err := s.Run(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	main := entries[0]
	assert.Equal(t, types.TrackMain, main.Track)
	assert.Equal(t, types.StateDone, main.State)
	assert.False(t, main.RunSuccess)
	assert.True(t, main.Uploaded)
	assert.Equal(t, "Walter_Evans_Market_Microstructure_20250101.pdf", main.Filename)
	assert.Equal(t, 1, main.Warnings)
	assert.True(t, started.Equal(main.StartedAt))
	assert.True(t, started.Add(3*time.Minute).Equal(main.FinishedAt))
	assert.NotEmpty(t, main.ID)

	derived := entries[1]
	assert.Equal(t, types.TrackDerived, derived.Track)
	assert.Equal(t, types.Topic("dark pools"), derived.Topic)
	assert.Equal(t, types.StateAborted, derived.State)
	assert.Equal(t, "generate (fatal): model overloaded", derived.FatalError)
	assert.Empty(t, derived.Filename)
	assert.NotEqual(t, main.ID, derived.ID)
}

func TestRecentNewestFirst(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, sampleRun("old", base, false)))
	require.NoError(t, s.Record(ctx, sampleRun("new", base.Add(24*time.Hour), false)))
	require.NoError(t, s.Record(ctx, sampleRun("mid", base.Add(time.Hour), true)))

	entries, err := s.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "new", entries[0].RunID)
	assert.Equal(t, "mid", entries[1].RunID)
	assert.Equal(t, types.TrackMain, entries[1].Track)
	assert.Equal(t, types.TrackDerived, entries[2].Track)
	assert.Equal(t, "old", entries[3].RunID)

	limited, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].RunID)
}

func TestRecordEmptyRunIsNoop(t *testing.T) {
	s := testStore(t)
	require.NoError(t, s.Record(context.Background(), types.RunResult{RunID: "empty"}))

	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Record(context.Background(), sampleRun("r1", time.Now(), false)))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, &buf)
	assert.Contains(t, buf.String(), "No runs recorded.")

	buf.Reset()
	FormatTable([]Entry{{
		RunID:      "0123456789abcdef",
		Track:      types.TrackMain,
		Topic:      "market microstructure",
		State:      types.StateDone,
		RunSuccess: true,
		Degraded:   true,
		StartedAt:  time.Now(),
	}}, &buf)
	out := buf.String()
	assert.Contains(t, out, "01234567")
	assert.Contains(t, out, "success")
	assert.Contains(t, out, "done (degraded) (not uploaded)")
}
