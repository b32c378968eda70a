// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package runlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAppendWritesFileAndConsole(t *testing.T) {
	dir := t.TempDir()
	var console bytes.Buffer
	l := New(dir, &console)
	l.now = fixedClock(time.Date(2025, 1, 1, 9, 5, 0, 0, time.UTC))

	l.Info("track %s: %s", "main", "generated")
	l.Warn("upload failed")

	assert.Equal(t, filepath.Join(dir, "automation_20250101.log"), l.Path())
	data, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2025-01-01T09:05:00Z INFO  track main: generated", lines[0])
	assert.Equal(t, "2025-01-01T09:05:00Z WARN  upload failed", lines[1])

	assert.Contains(t, console.String(), "track main: generated")
	assert.Contains(t, console.String(), "upload failed")
}

func TestAppendPartitionsByDate(t *testing.T) {
	dir := t.TempDir()
	l := New(dir, nil)

	l.now = fixedClock(time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC))
	l.Info("first day")
	l.now = fixedClock(time.Date(2025, 1, 2, 0, 1, 0, 0, time.UTC))
	l.Info("second day")

	_, err := os.Stat(filepath.Join(dir, "automation_20250101.log"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "automation_20250102.log"))
	assert.NoError(t, err)
	assert.Equal(t, []string{"2025-01-02T00:01:00Z INFO  second day"}, l.Tail(10))
}

func TestAppendNeverTruncates(t *testing.T) {
	dir := t.TempDir()
	clock := fixedClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	first := New(dir, nil)
	first.now = clock
	first.Info("run one")

	second := New(dir, nil)
	second.now = clock
	second.Error("run two")

	lines := second.Tail(10)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "run one")
	assert.Contains(t, lines[1], "ERROR run two")
}

func TestConcurrentAppends(t *testing.T) {
	l := New(t.TempDir(), nil)
	l.now = fixedClock(time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Info("entry %d", i)
		}(i)
	}
	wg.Wait()

	assert.Len(t, l.Tail(100), 50)
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	l := New(blocker, nil)
	assert.NotPanics(t, func() { l.Info("lost") })
	assert.Empty(t, l.Tail(5))
}

func TestNilLogger(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Warn("nothing") })
	assert.Equal(t, "", l.Path())
	assert.Nil(t, l.Tail(3))
}
