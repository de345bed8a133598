package svcspec

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nextWatchEvent(t *testing.T, events <-chan WatchEvent) WatchEvent {
	t.Helper()
	select {
	case event, ok := <-events:
		require.True(t, ok, "events channel closed")
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for watch event")
		return WatchEvent{}
	}
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services:\n  alpha:\n    command: /bin/true\n    user: fred\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events, cleanup, err := Watch(ctx, path, NewCompiler())
	require.NoError(t, err)

	// Initial compile is already queued
	event := nextWatchEvent(t, events)
	require.NoError(t, event.Err)
	require.Len(t, event.Bundles, 1)
	assert.Equal(t, "alpha", event.Bundles[0].Service.Name)

	require.NoError(t, os.WriteFile(path, []byte("services:\n  alpha:\n    command: /bin/true\n    user: fred\n  bravo:\n    command: /bin/false\n    user: fred\n"), 0o644))

	assert.Eventually(t, func() bool {
		select {
		case event := <-events:
			return event.Err == nil && len(event.Bundles) == 2
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	// A broken file is reported, not fatal
	require.NoError(t, os.WriteFile(path, []byte("services:\n  alpha:\n    command: /bin/true\n"), 0o644))

	assert.Eventually(t, func() bool {
		select {
		case event := <-events:
			return event.Err != nil && IsValidationError(event.Err)
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- cleanup() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup took too long")
	}
}

func TestWatchIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "services.yaml")
	require.NoError(t, os.WriteFile(path, []byte("services: {}\n"), 0o644))

	events, cleanup, err := Watch(context.Background(), path, NewCompiler())
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	nextWatchEvent(t, events)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o644))

	select {
	case event := <-events:
		t.Fatalf("unexpected event: %+v", event)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	_, _, err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "services.yaml"), NewCompiler())
	assert.Error(t, err)
}
