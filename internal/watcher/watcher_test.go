package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	watcher, err := NewFileWatcher(0, nil)
	require.NoError(t, err)
	defer watcher.Stop()

	assert.NotNil(t, watcher.watcher)
	assert.Equal(t, DefaultDebounce, watcher.debouncer.delay)
	assert.Empty(t, watcher.filters)
	assert.Empty(t, watcher.handlers)
}

func TestFilters(t *testing.T) {
	abs, err := filepath.Abs("portfolio.yaml")
	require.NoError(t, err)

	tests := []struct {
		name   string
		filter FileFilter
		path   string
		want   bool
	}{
		{"path match", PathFilter(abs), "portfolio.yaml", true},
		{"path mismatch", PathFilter(abs), "other.yaml", false},
		{"yaml", ContentFilter, "a/portfolio.yml", true},
		{"toml", ContentFilter, "portfolio.TOML", true},
		{"json", ContentFilter, "portfolio.json", true},
		{"go", ContentFilter, "main.go", false},
		{"plain file", NoTempFilter, "portfolio.yaml", true},
		{"emacs lock", NoTempFilter, ".#portfolio.yaml", false},
		{"backup", NoTempFilter, "portfolio.yaml~", false},
		{"vim swap", NoTempFilter, ".portfolio.yaml.swp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter(tt.path))
		})
	}
}

func TestDebouncerFlush(t *testing.T) {
	d := &Debouncer{delay: time.Hour, output: make(chan []ChangeEvent, 1)}
	d.add(ChangeEvent{Type: EventTypeCreated, Path: "a"})
	d.add(ChangeEvent{Type: EventTypeModified, Path: "b"})
	d.add(ChangeEvent{Type: EventTypeModified, Path: "a"})
	d.flush()
	d.stop()

	events := <-d.output
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Path)
	assert.Equal(t, EventTypeModified, events[0].Type)
	assert.Equal(t, "b", events[1].Path)

	d.flush()
	assert.Empty(t, d.output)
}

func TestWatchFileReportsWrites(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	target := filepath.Join(dir, "portfolio.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(target, []byte("a: 1\n"), 0o644))

	watcher, err := NewFileWatcher(20*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, watcher.WatchFile(target))

	var mu sync.Mutex
	var batches [][]ChangeEvent
	watcher.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, events)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, watcher.Start(ctx))

	require.NoError(t, os.WriteFile(other, []byte("b: 1\n"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(target, []byte("a: 2\n"), 0o644))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(batches) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	for _, batch := range batches {
		for _, event := range batch {
			assert.Equal(t, filepath.Base(target), filepath.Base(event.Path))
		}
	}
	mu.Unlock()

	cancel()
	require.NoError(t, watcher.Stop())
}

func TestRunStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	watcher, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	require.NoError(t, watcher.AddPath(t.TempDir()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
