package svcspec

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"vawter.tech/stopper"
)

// DefaultWatchDebounce is the default debounce time for spec file watching
const DefaultWatchDebounce = 25 * time.Millisecond

// WatchEvent carries the result of recompiling a watched spec file.
// Bundles may be partially filled when Err is a *MultiError.
type WatchEvent struct {
	Bundles []*Bundle
	Err     error
}

// WatchCleanupFunc stops a watch and waits for its goroutine to exit
type WatchCleanupFunc func() error

// Watch compiles the spec file at path and recompiles it every time it
// changes. The first event is sent before Watch returns. The directory is
// watched rather than the file so that editors replacing the file are seen.
func Watch(ctx context.Context, path string, compiler *Compiler) (<-chan WatchEvent, WatchCleanupFunc, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving spec file: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, nil, fmt.Errorf("watching %s: %w", filepath.Dir(absPath), err)
	}

	ch := make(chan WatchEvent, 10)

	// Create stopper context for managing goroutine lifecycle
	sctx := stopper.WithContext(ctx)

	// Register watcher cleanup with stopper
	sctx.Defer(func() {
		_ = watcher.Close()
		close(ch)
	})

	cleanup := func() error {
		sctx.Stop(100 * time.Millisecond)
		return sctx.Wait()
	}

	var debouncer *time.Timer
	trigger := make(chan struct{}, 1)

	compileAndSend := func() {
		if sctx.IsStopping() {
			return
		}

		event := WatchEvent{}
		f, err := LoadFile(absPath)
		if err == nil {
			var entries []Entry
			entries, err = f.Entries()
			if err == nil {
				event.Bundles, err = compiler.CompileAll(ctx, entries)
			}
		}
		event.Err = err

		compiler.logger.Info("Recompiled spec file",
			zap.String("path", absPath),
			zap.Int("bundles", len(event.Bundles)),
			zap.Error(err))

		select {
		case ch <- event:
		case <-sctx.Stopping():
		}
	}

	// Initial compile
	compileAndSend()

	sctx.Go(func(sctx *stopper.Context) error {
		// Register debouncer cleanup
		sctx.Defer(func() {
			if debouncer != nil {
				debouncer.Stop()
			}
		})

		for !sctx.IsStopping() {
			select {
			case <-sctx.Stopping():
				return nil

			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}

				if event.Name != absPath || !event.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}

				if debouncer != nil {
					debouncer.Stop()
				}
				debouncer = time.AfterFunc(DefaultWatchDebounce, func() {
					select {
					case trigger <- struct{}{}:
					default:
					}
				})

			case <-trigger:
				compileAndSend()

			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				if err != nil && !sctx.IsStopping() {
					select {
					case ch <- WatchEvent{Err: err}:
					case <-sctx.Stopping():
						return nil
					}
				}
			}
		}
		return nil
	})

	return ch, cleanup, nil
}
