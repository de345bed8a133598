package svcspec

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// State is the desired presence of a filesystem resource
type State string

const (
	// StatePresent asks the engine to create or keep the resource
	StatePresent State = "present"
	// StateAbsent asks the engine to remove the resource if it exists
	StateAbsent State = "absent"
)

// File describes a file with exact contents
type File struct {
	Path    string      `json:"path" yaml:"path"`
	Content string      `json:"content" yaml:"content"`
	Mode    fs.FileMode `json:"mode" yaml:"mode"`
	Owner   string      `json:"owner" yaml:"owner"`
}

// Directory describes a directory and its desired presence
type Directory struct {
	Path  string      `json:"path" yaml:"path"`
	State State       `json:"state" yaml:"state"`
	Mode  fs.FileMode `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// Symlink describes a symbolic link and its desired presence
type Symlink struct {
	Path   string `json:"path" yaml:"path"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	State  State  `json:"state" yaml:"state"`
}

// Marker describes an empty marker file, such as the down file
type Marker struct {
	Path  string `json:"path" yaml:"path"`
	State State  `json:"state" yaml:"state"`
}

// Command is a convergence action. The engine runs Command only when OnlyIf
// (if set) succeeds and Unless (if set) fails. A RefreshOnly command runs only
// when one of the resources in Subscribe changed during the same run.
type Command struct {
	Name        string   `json:"name" yaml:"name"`
	Command     string   `json:"command" yaml:"command"`
	OnlyIf      string   `json:"onlyif,omitempty" yaml:"onlyif,omitempty"`
	Unless      string   `json:"unless,omitempty" yaml:"unless,omitempty"`
	RefreshOnly bool     `json:"refreshonly,omitempty" yaml:"refreshonly,omitempty"`
	Subscribe   []string `json:"subscribe,omitempty" yaml:"subscribe,omitempty"`
}

// Grant allows User to control Service through Backend without a password
// when Passwd is false
type Grant struct {
	Backend string `json:"backend" yaml:"backend"`
	Key     string `json:"key" yaml:"key"`
	User    string `json:"user" yaml:"user"`
	Service string `json:"service" yaml:"service"`
	Passwd  bool   `json:"passwd" yaml:"passwd"`
}

// Bundle is everything compiled for one service
type Bundle struct {
	Service     *ServiceSpec `json:"service" yaml:"service"`
	Files       []File       `json:"files,omitempty" yaml:"files,omitempty"`
	Directories []Directory  `json:"directories,omitempty" yaml:"directories,omitempty"`
	Symlinks    []Symlink    `json:"symlinks,omitempty" yaml:"symlinks,omitempty"`
	Markers     []Marker     `json:"markers,omitempty" yaml:"markers,omitempty"`
	Commands    []Command    `json:"commands,omitempty" yaml:"commands,omitempty"`
	Grants      []Grant      `json:"grants,omitempty" yaml:"grants,omitempty"`
	// Log is the companion log service, nil when logging is disabled
	Log *Bundle `json:"log,omitempty" yaml:"log,omitempty"`
}

// File returns the file descriptor at path
func (b *Bundle) File(path string) (File, bool) {
	for _, f := range b.Files {
		if f.Path == path {
			return f, true
		}
	}
	return File{}, false
}

// Command returns the command named name
func (b *Bundle) Command(name string) (Command, bool) {
	for _, c := range b.Commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Symlink returns the symlink descriptor at path
func (b *Bundle) Symlink(path string) (Symlink, bool) {
	for _, s := range b.Symlinks {
		if s.Path == path {
			return s, true
		}
	}
	return Symlink{}, false
}

// Format selects a bundle encoding
type Format string

const (
	// FormatYAML encodes bundles as a YAML document
	FormatYAML Format = "yaml"
	// FormatJSON encodes bundles as indented JSON
	FormatJSON Format = "json"
)

// Encode writes bundles to w in the given format
func Encode(w io.Writer, format Format, bundles []*Bundle) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(bundles); err != nil {
			return fmt.Errorf("encoding bundles as json: %w", err)
		}
		return nil
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(bundles); err != nil {
			return fmt.Errorf("encoding bundles as yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
