package svcspec

import (
	"fmt"
	"path"
)

// GrantScope selects how a sudo backend addresses a service
type GrantScope int

const (
	// ScopePath addresses the service by its active symlink path
	ScopePath GrantScope = iota
	// ScopeName addresses the service by its bare name
	ScopeName
)

// GrantScope string constants
const (
	grantScopePathStr = "path"
	grantScopeNameStr = "name"
)

// String returns the string representation of a GrantScope
func (s GrantScope) String() string {
	switch s {
	case ScopeName:
		return grantScopeNameStr
	default:
		return grantScopePathStr
	}
}

// ParseGrantScope parses "path" or "name"
func ParseGrantScope(s string) (GrantScope, error) {
	switch s {
	case grantScopePathStr:
		return ScopePath, nil
	case grantScopeNameStr:
		return ScopeName, nil
	default:
		return ScopePath, fmt.Errorf("unknown grant scope %q", s)
	}
}

// GrantBackend is a privilege-grant backend that can receive control rights
// over a service
type GrantBackend struct {
	// Name identifies the backend and is the value selecting it in sudo_control
	Name string
	// Scope is the backend's addressing convention
	Scope GrantScope
}

// Layout contains the filesystem locations and tool paths a compiled service
// refers to
type Layout struct {
	// StagingDir holds the generated service directories
	StagingDir string
	// ActiveDir is the directory scanned by svscan
	ActiveDir string
	// SvcPath is the path to the svc control tool
	SvcPath string
	// MultilogPath is the path to the default log consumer
	MultilogPath string
	// TestPath is the path to test(1), used in command guards
	TestPath string
	// PurgePath is the path to the service purge helper
	PurgePath string
	// SetuidgidPath drops uid and gid before exec
	SetuidgidPath string
	// EnvuidgidPath drops uid only
	EnvuidgidPath string
	// SuPath switches user keeping supplementary groups
	SuPath string
	// PrimaryBackend receives grants for sudo_control=true
	PrimaryBackend GrantBackend
	// AlternateBackend is the second grant backend
	AlternateBackend GrantBackend
}

// DefaultLayout returns the default layout for daemontools
func DefaultLayout() Layout {
	return Layout{
		StagingDir:       DefaultStagingDir,
		ActiveDir:        DefaultActiveDir,
		SvcPath:          DefaultSvcPath,
		MultilogPath:     DefaultMultilogPath,
		TestPath:         DefaultTestPath,
		PurgePath:        DefaultPurgePath,
		SetuidgidPath:    DefaultSetuidgidPath,
		EnvuidgidPath:    DefaultEnvuidgidPath,
		SuPath:           DefaultSuPath,
		PrimaryBackend:   GrantBackend{Name: "daemontools", Scope: ScopePath},
		AlternateBackend: GrantBackend{Name: "allah", Scope: ScopeName},
	}
}

// Validate checks that the layout is usable
func (l Layout) Validate() error {
	for _, dir := range []struct {
		name, value string
	}{
		{"staging_dir", l.StagingDir},
		{"active_dir", l.ActiveDir},
	} {
		if !path.IsAbs(dir.value) {
			return fmt.Errorf("layout %s must be an absolute path: %q", dir.name, dir.value)
		}
	}
	if l.PrimaryBackend.Name == "" || l.AlternateBackend.Name == "" {
		return fmt.Errorf("layout grant backends must be named")
	}
	if l.PrimaryBackend.Name == l.AlternateBackend.Name {
		return fmt.Errorf("layout grant backends must differ: both are %q", l.PrimaryBackend.Name)
	}
	if l.PrimaryBackend.Name == sudoBothStr || l.AlternateBackend.Name == sudoBothStr {
		return fmt.Errorf("layout grant backend may not be named %q", sudoBothStr)
	}
	return nil
}

// StagingPath returns the staging directory of a service
func (l Layout) StagingPath(name string) string {
	return path.Join(l.StagingDir, name)
}

// ActivePath returns the active symlink path of a service
func (l Layout) ActivePath(name string) string {
	return path.Join(l.ActiveDir, name)
}

// RunPath returns the run script path of a service
func (l Layout) RunPath(name string) string {
	return path.Join(l.StagingPath(name), RunFile)
}

// DownPath returns the down marker path of a service
func (l Layout) DownPath(name string) string {
	return path.Join(l.StagingPath(name), DownFile)
}

// DefaultLogCommand returns the log consumer command used when log is true
func (l Layout) DefaultLogCommand() string {
	return l.MultilogPath + " t ./main"
}
