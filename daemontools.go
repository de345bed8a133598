package svcspec

// Daemontools directory and file constants
const (
	// RunFile is the name of the run script inside a service directory
	RunFile = "run"

	// DownFile is the marker that keeps supervise from starting a service
	DownFile = "down"

	// LogDir is the subdirectory holding the companion log service
	LogDir = "log"

	// LogSuffix is appended to a service name to name its log service
	LogSuffix = "/" + LogDir

	// Shebang is the interpreter line of every generated run script
	Shebang = "#!/bin/sh"

	// ChdirFailExit is the exit status of a run script that cannot enter its
	// working directory. supervise retries after a second.
	ChdirFailExit = 111
)

// Default filesystem locations
const (
	// DefaultStagingDir holds the generated service directories
	DefaultStagingDir = "/var/lib/service"

	// DefaultActiveDir is the directory scanned by svscan
	DefaultActiveDir = "/etc/service"
)

// Binary paths with defaults that can be overridden
const (
	// DefaultSvcPath is the default path to the svc binary
	DefaultSvcPath = "/usr/bin/svc"

	// DefaultMultilogPath is the default path to the multilog binary
	DefaultMultilogPath = "/usr/bin/multilog"

	// DefaultTestPath is the default path to the test binary used in guards
	DefaultTestPath = "/usr/bin/test"

	// DefaultPurgePath is the default path to the service purge helper
	DefaultPurgePath = "/usr/local/sbin/purge_daemontools_service"

	// DefaultSetuidgidPath drops uid and gid before exec
	DefaultSetuidgidPath = "setuidgid"

	// DefaultEnvuidgidPath exports $UID and $GID for the program to drop itself
	DefaultEnvuidgidPath = "envuidgid"

	// DefaultSuPath switches user keeping supplementary groups
	DefaultSuPath = "su"
)

// File modes
const (
	// DirMode is the default mode for service directories
	DirMode = 0o755

	// FileMode is the default mode for marker files
	FileMode = 0o644

	// ExecMode is the default mode for run scripts
	ExecMode = 0o755

	// DefaultOwner owns generated files
	DefaultOwner = "root"
)

// Operation represents an svc control operation
type Operation int

const (
	// OpUnknown represents an unknown operation
	OpUnknown Operation = iota
	// OpUp starts the service and keeps it up
	OpUp
	// OpDown stops the service and keeps it down
	OpDown
	// OpTerm sends SIGTERM; supervise restarts the service when it wants it up
	OpTerm
)

// Operation string constants
const (
	opUnknownStr = "unknown"
	opUpStr      = "up"
	opDownStr    = "down"
	opTermStr    = "term"
)

// String returns the string representation of an Operation
func (op Operation) String() string {
	switch op {
	case OpUp:
		return opUpStr
	case OpDown:
		return opDownStr
	case OpTerm:
		return opTermStr
	default:
		return opUnknownStr
	}
}

// Byte returns the svc option letter for this operation
func (op Operation) Byte() byte {
	switch op {
	case OpUp:
		return 'u'
	case OpDown:
		return 'd'
	case OpTerm:
		return 't'
	default:
		return 0
	}
}

// Flag returns the svc command-line flag for this operation, e.g. "-u"
func (op Operation) Flag() string {
	b := op.Byte()
	if b == 0 {
		return ""
	}
	return string([]byte{'-', b})
}
