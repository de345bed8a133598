package svcspec

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Spec file top-level keys
const (
	fileKeyServices = "services"
	fileKeyGroups   = "groups"
	groupKeyWorkers = "workers"
)

// SpecFile is a parsed document of service and group records
type SpecFile struct {
	// Path is where the document was read from, if anywhere
	Path string
	// Services maps service names to their records
	Services map[string]RawSpec
	// Groups maps group names to their definitions
	Groups map[string]ServiceGroup
}

// LoadFile reads a YAML (.yaml, .yml) or TOML (.toml) spec file
func LoadFile(path string) (*SpecFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	var format string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		format = "toml"
	case ".yaml", ".yml", "":
		format = "yaml"
	default:
		return nil, fmt.Errorf("spec file %s: unsupported extension %q", path, filepath.Ext(path))
	}

	f, err := ParseSpecFile(data, format)
	if err != nil {
		return nil, fmt.Errorf("spec file %s: %w", path, err)
	}
	f.Path = path
	return f, nil
}

// ParseSpecFile parses a spec document in "yaml" or "toml" format
func ParseSpecFile(data []byte, format string) (*SpecFile, error) {
	doc := map[string]any{}

	switch format {
	case "toml":
		if err := toml.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding toml: %w", err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}

	f := &SpecFile{
		Services: make(map[string]RawSpec),
		Groups:   make(map[string]ServiceGroup),
	}

	for key, value := range doc {
		switch key {
		case fileKeyServices:
			records, err := asRecords(key, value)
			if err != nil {
				return nil, err
			}
			for name, record := range records {
				raw, err := ParseRaw(name, record)
				if err != nil {
					return nil, err
				}
				f.Services[name] = raw
			}
		case fileKeyGroups:
			records, err := asRecords(key, value)
			if err != nil {
				return nil, err
			}
			for name, record := range records {
				g, err := parseGroup(name, record)
				if err != nil {
					return nil, err
				}
				f.Groups[name] = g
			}
		default:
			return nil, fmt.Errorf("unknown top-level key %q", key)
		}
	}

	return f, nil
}

// Entries returns every service in the file, groups expanded, sorted by name
func (f *SpecFile) Entries() ([]Entry, error) {
	entries := make([]Entry, 0, len(f.Services))
	for name, raw := range f.Services {
		entries = append(entries, Entry{Name: name, Raw: raw})
	}

	for _, g := range f.Groups {
		expanded, err := g.Expand()
		if err != nil {
			return nil, err
		}
		entries = append(entries, expanded...)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

func asRecords(key string, value any) (map[string]map[string]any, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a mapping, got %T", key, value)
	}

	records := make(map[string]map[string]any, len(m))
	for name, v := range m {
		record, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s.%s must be a mapping, got %T", key, name, v)
		}
		records[name] = record
	}
	return records, nil
}

// parseGroup splits the group-only keys from the shared worker record.
// The worker command template is kept out of Base.
func parseGroup(name string, record map[string]any) (ServiceGroup, error) {
	g := ServiceGroup{Name: name}

	shared := make(map[string]any, len(record))
	for k, v := range record {
		shared[k] = v
	}

	if v, ok := shared[keyCommand]; ok {
		cmd, err := asString(name, keyCommand, v)
		if err != nil {
			return ServiceGroup{}, err
		}
		g.Command = cmd
	}

	if v, ok := shared[groupKeyWorkers]; ok {
		n, err := asInt(name, groupKeyWorkers, v)
		if err != nil {
			return ServiceGroup{}, err
		}
		g.Workers = int(n)
		delete(shared, groupKeyWorkers)
	}

	// command stays in the record so ParseRaw sees it as supplied
	base, err := ParseRaw(name, shared)
	if err != nil {
		return ServiceGroup{}, err
	}
	base.Command = ""
	g.Base = base
	return g, nil
}
