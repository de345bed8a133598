package svcspec

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Compiler compiles many services concurrently. A service that fails
// validation does not stop the others.
type Compiler struct {
	// Concurrency is the maximum number of concurrent compilations
	Concurrency int
	// Layout is passed to every compilation
	Layout Layout

	logger     *zap.Logger
	registerer prometheus.Registerer

	compiled prometheus.Counter
	failures *prometheus.CounterVec
}

// CompilerOption configures a Compiler
type CompilerOption func(*Compiler)

// WithConcurrency sets the maximum number of concurrent compilations
func WithConcurrency(n int) CompilerOption {
	return func(c *Compiler) {
		c.Concurrency = n
	}
}

// WithCompilerLayout sets the layout used for every service
func WithCompilerLayout(layout Layout) CompilerOption {
	return func(c *Compiler) {
		c.Layout = layout
	}
}

// WithCompilerLogger sets the logger
func WithCompilerLogger(logger *zap.Logger) CompilerOption {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRegisterer registers the compiler's counters with reg
func WithRegisterer(reg prometheus.Registerer) CompilerOption {
	return func(c *Compiler) {
		c.registerer = reg
	}
}

// NewCompiler creates a new Compiler with default settings
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		Concurrency: 10,
		Layout:      DefaultLayout(),
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.Concurrency < 1 {
		c.Concurrency = 1
	}

	factory := promauto.With(c.registerer)
	c.compiled = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "svcspec",
		Name:      "compiled_total",
		Help:      "Number of services compiled into a bundle.",
	})
	c.failures = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "svcspec",
		Name:      "compile_failures_total",
		Help:      "Number of services that failed to compile, by offending field.",
	}, []string{"field"})

	return c
}

// CompileAll compiles every entry. Bundles are returned in entry order, with
// nil in place of entries that failed; the error is a *MultiError holding one
// error per failed entry.
func (c *Compiler) CompileAll(ctx context.Context, entries []Entry) ([]*Bundle, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	if err := c.Layout.Validate(); err != nil {
		return nil, err
	}

	bundles := make([]*Bundle, len(entries))
	merr := &MultiError{}
	var mu sync.Mutex

	fail := func(name string, err error) {
		c.failures.WithLabelValues(ErrorField(err)).Inc()
		c.logger.Warn("Service failed to compile", zap.String("service", name), zap.Error(err))
		mu.Lock()
		merr.Add(err)
		mu.Unlock()
	}

	seen := make(map[string]struct{}, len(entries))
	skip := make([]bool, len(entries))
	for i, e := range entries {
		if _, dup := seen[e.Name]; dup {
			skip[i] = true
			fail(e.Name, invalid(e.Name, "name", e.Name, fmt.Sprintf("duplicate service name: %s", e.Name)))
			continue
		}
		seen[e.Name] = struct{}{}
	}

	// A parent's log service owns "<parent>/log"
	parents := make(map[string]RawSpec, len(entries))
	for i, e := range entries {
		if !skip[i] {
			parents[e.Name] = e.Raw
		}
	}
	for i, e := range entries {
		if skip[i] {
			continue
		}
		parent, ok := strings.CutSuffix(e.Name, LogSuffix)
		if !ok {
			continue
		}
		if raw, exists := parents[parent]; exists && raw.hasLogService() {
			skip[i] = true
			fail(e.Name, &ConflictError{
				Service: e.Name,
				Fields:  []string{"name", keyLog},
				Reason:  fmt.Sprintf("name is taken by the log service of %s", parent),
			})
		}
	}

	var g errgroup.Group
	g.SetLimit(c.Concurrency)

	for i, entry := range entries {
		if skip[i] {
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				merr.Add(fmt.Errorf("service %q: %w", entry.Name, err))
				mu.Unlock()
				return nil
			}

			bundle, err := Compile(entry.Name, entry.Raw, WithLayout(c.Layout), WithLogger(c.logger))
			if err != nil {
				fail(entry.Name, err)
				return nil
			}

			c.compiled.Inc()
			bundles[i] = bundle
			return nil
		})
	}

	// Workers never return errors; failures are collected in merr
	_ = g.Wait()

	return bundles, merr.Err()
}
