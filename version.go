package svcspec

// Version is the current version of the svcspec compiler
const Version = "1.0.0"

// VersionInfo contains detailed version information
type VersionInfo struct {
	// Version is the semantic version
	Version string
	// Supervisor is the supervision suite compiled scripts target
	Supervisor string
}

// GetVersion returns the current version information
func GetVersion() VersionInfo {
	return VersionInfo{
		Version:    Version,
		Supervisor: "daemontools",
	}
}
