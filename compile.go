package svcspec

import (
	"go.uber.org/zap"
)

// options configures Compile
type options struct {
	layout Layout
	logger *zap.Logger
}

// Option configures Compile
type Option func(*options)

// WithLayout sets the filesystem layout and tool paths
func WithLayout(layout Layout) Option {
	return func(o *options) {
		o.layout = layout
	}
}

// WithLogger sets the logger. Compile logs at debug level only.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		layout: DefaultLayout(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Compile validates raw and produces the bundle for the named service. When
// validation fails no bundle is returned.
func Compile(name string, raw RawSpec, opts ...Option) (*Bundle, error) {
	o := newOptions(opts)
	if err := o.layout.Validate(); err != nil {
		return nil, err
	}

	spec, err := Validate(name, raw, o.layout)
	if err != nil {
		o.logger.Debug("Validation failed", zap.String("service", name), zap.Error(err))
		return nil, err
	}

	bundle, err := CompileSpec(spec, o.layout)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("Compiled service",
		zap.String("service", name),
		zap.Stringer("ensure", spec.Ensure),
		zap.Int("files", len(bundle.Files)),
		zap.Int("commands", len(bundle.Commands)),
		zap.Int("grants", len(bundle.Grants)),
		zap.Bool("log", bundle.Log != nil))

	return bundle, nil
}

// CompileSpec produces the bundle for an already validated service
func CompileSpec(spec *ServiceSpec, layout Layout) (*Bundle, error) {
	bundle := &Bundle{Service: spec}

	sup := PlanSupervision(spec, layout)
	bundle.Directories = append(bundle.Directories, sup.Directory)
	bundle.Symlinks = append(bundle.Symlinks, sup.Symlink)
	if sup.Down != nil {
		bundle.Markers = append(bundle.Markers, *sup.Down)
	}

	if spec.Ensure != EnsureAbsent {
		bundle.Files = append(bundle.Files, runFile(spec, layout))
	}

	plan, err := PlanLifecycle(spec, layout)
	if err != nil {
		return nil, err
	}
	bundle.Commands = plan.Commands
	bundle.Grants = PlanGrants(spec, layout)

	if logSpec := spec.LogSpec(layout); logSpec != nil {
		bundle.Log = &Bundle{
			Service: logSpec,
			Directories: []Directory{
				{Path: layout.StagingPath(logSpec.Name), State: StatePresent, Mode: DirMode},
			},
			Files: []File{runFile(logSpec, layout)},
		}
	}

	return bundle, nil
}

func runFile(spec *ServiceSpec, layout Layout) File {
	return File{
		Path:    layout.RunPath(spec.Name),
		Content: RenderRunWithLayout(spec, layout),
		Mode:    ExecMode,
		Owner:   DefaultOwner,
	}
}
