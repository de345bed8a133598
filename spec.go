package svcspec

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// Ensure is the desired lifecycle state of a service
type Ensure int

const (
	// EnsureUnset keeps the service present without forcing a run state
	EnsureUnset Ensure = iota
	// EnsureRunning keeps the service up
	EnsureRunning
	// EnsureStopped keeps the service installed but down
	EnsureStopped
	// EnsureAbsent removes the service
	EnsureAbsent
)

// Ensure string constants
const (
	ensureUnsetStr   = ""
	ensurePresentStr = "present"
	ensureRunningStr = "running"
	ensureStoppedStr = "stopped"
	ensureAbsentStr  = "absent"
)

// String returns the string representation of an Ensure value
func (e Ensure) String() string {
	switch e {
	case EnsureRunning:
		return ensureRunningStr
	case EnsureStopped:
		return ensureStoppedStr
	case EnsureAbsent:
		return ensureAbsentStr
	default:
		return ensureUnsetStr
	}
}

// ParseEnsure parses an ensure value. The empty string and "present" both mean
// no forced transition.
func ParseEnsure(s string) (Ensure, bool) {
	switch s {
	case ensureUnsetStr, ensurePresentStr:
		return EnsureUnset, true
	case ensureRunningStr:
		return EnsureRunning, true
	case ensureStoppedStr:
		return EnsureStopped, true
	case ensureAbsentStr:
		return EnsureAbsent, true
	default:
		return EnsureUnset, false
	}
}

// MarshalText implements encoding.TextMarshaler
func (e Ensure) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

// LimitKind is a resource ceiling set with ulimit before exec
type LimitKind int

// Limit kinds, in rendering order
const (
	LimitDataSegment LimitKind = iota
	LimitStackSegment
	LimitFileDescriptors
	LimitProcesses
	LimitFileSize
	LimitCoreSize
	LimitRSS
	LimitCPUTime
	LimitVirtualMemory
	LimitLockedMemory
)

// limitTable maps each kind to its configuration name and ulimit flag
var limitTable = [...]struct {
	name string
	flag string
}{
	LimitDataSegment:     {"data_segment", "-d"},
	LimitStackSegment:    {"stack_segment", "-s"},
	LimitFileDescriptors: {"file_descriptors", "-n"},
	LimitProcesses:       {"processes", "-u"},
	LimitFileSize:        {"file_size", "-f"},
	LimitCoreSize:        {"core_size", "-c"},
	LimitRSS:             {"rss", "-m"},
	LimitCPUTime:         {"cpu_time", "-t"},
	LimitVirtualMemory:   {"virtual_memory", "-v"},
	LimitLockedMemory:    {"locked_memory", "-l"},
}

// LimitKinds returns every limit kind in rendering order
func LimitKinds() []LimitKind {
	kinds := make([]LimitKind, len(limitTable))
	for i := range limitTable {
		kinds[i] = LimitKind(i)
	}
	return kinds
}

// String returns the configuration name of the kind, e.g. "file_descriptors"
func (k LimitKind) String() string {
	if k < 0 || int(k) >= len(limitTable) {
		return fmt.Sprintf("LimitKind(%d)", int(k))
	}
	return limitTable[k].name
}

// Flag returns the ulimit flag for the kind
func (k LimitKind) Flag() string {
	if k < 0 || int(k) >= len(limitTable) {
		return ""
	}
	return limitTable[k].flag
}

// MarshalText implements encoding.TextMarshaler
func (k LimitKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ParseLimitKind looks a kind up by its configuration name
func ParseLimitKind(s string) (LimitKind, bool) {
	for i, l := range limitTable {
		if l.name == s {
			return LimitKind(i), true
		}
	}
	return 0, false
}

// SudoControl selects which grant backends receive control rights
type SudoControl int

const (
	// SudoNone grants nothing
	SudoNone SudoControl = iota
	// SudoPrimary grants through the layout's primary backend
	SudoPrimary
	// SudoAlternate grants through the layout's alternate backend
	SudoAlternate
	// SudoBoth grants through both backends
	SudoBoth
)

const sudoBothStr = "both"

// String returns the string representation of a SudoControl value
func (s SudoControl) String() string {
	switch s {
	case SudoPrimary:
		return "primary"
	case SudoAlternate:
		return "alternate"
	case SudoBoth:
		return sudoBothStr
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s SudoControl) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LogConfig describes the companion log service
type LogConfig struct {
	// Enabled is false when log was set to false
	Enabled bool `json:"enabled" yaml:"enabled"`
	// Command is the log consumer command
	Command string `json:"command,omitempty" yaml:"command,omitempty"`
}

// ServiceSpec is a validated, normalised service specification.
// It is not modified after Validate returns it.
type ServiceSpec struct {
	// Name is the service name; all paths derive from it
	Name string `json:"name" yaml:"name"`
	// Command is the program invocation, arguments included
	Command string `json:"command" yaml:"command"`
	// User is the identity the program runs as
	User string `json:"user" yaml:"user"`
	// Directory is the working directory
	Directory string `json:"directory" yaml:"directory"`
	// Setuid selects setuidgid (true) or envuidgid/su (false)
	Setuid bool `json:"setuid" yaml:"setuid"`
	// UseSecondaryGroups selects su when Setuid is false
	UseSecondaryGroups bool `json:"use_secondary_groups" yaml:"use_secondary_groups"`
	// Ensure is the desired lifecycle state
	Ensure Ensure `json:"ensure" yaml:"ensure"`
	// Log configures the companion log service
	Log LogConfig `json:"log" yaml:"log"`
	// Environment is exported before exec
	Environment map[string]string `json:"environment,omitempty" yaml:"environment,omitempty"`
	// Limits are resource ceilings
	Limits map[LimitKind]int64 `json:"limits,omitempty" yaml:"limits,omitempty"`
	// Umask is an octal file mode creation mask
	Umask string `json:"umask,omitempty" yaml:"umask,omitempty"`
	// PreCommand runs before exec, one command per element
	PreCommand []string `json:"pre_command,omitempty" yaml:"pre_command,omitempty"`
	// SudoControl selects grant backends
	SudoControl SudoControl `json:"sudo_control" yaml:"sudo_control"`
	// SudoUser is granted control rights
	SudoUser string `json:"sudo_user" yaml:"sudo_user"`
}

// Clone creates a deep copy of the ServiceSpec
func (s *ServiceSpec) Clone() *ServiceSpec {
	if s == nil {
		return nil
	}

	clone := &ServiceSpec{}
	if err := deepcopy.Copy(clone, s); err != nil {
		// ServiceSpec only holds plain values, maps and slices
		panic(fmt.Sprintf("svcspec: cloning %q: %v", s.Name, err))
	}
	return clone
}

// LogSpec returns the nested log service, or nil when logging is disabled.
// Its Log is always disabled.
func (s *ServiceSpec) LogSpec(layout Layout) *ServiceSpec {
	if !s.Log.Enabled || s.Ensure == EnsureAbsent {
		return nil
	}

	name := s.Name + LogSuffix
	return &ServiceSpec{
		Name:      name,
		Command:   s.Log.Command,
		User:      s.User,
		Directory: layout.StagingPath(name),
		Setuid:    true,
		Log:       LogConfig{Enabled: false},
		SudoUser:  s.User,
	}
}
