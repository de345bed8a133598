package svcspec

import (
	"fmt"
	"strconv"
	"strings"
)

// ServiceGroup runs several identical workers of one program. Command is a
// worker template (see GenerateWorkerNames) and every other setting comes from
// Base.
type ServiceGroup struct {
	// Name prefixes every worker's service name
	Name string
	// Command is expanded once per worker
	Command string
	// Workers is the number of workers
	Workers int
	// Base holds the settings shared by all workers; its Command is ignored
	Base RawSpec
}

// Entry is one named service record awaiting compilation
type Entry struct {
	Name string
	Raw  RawSpec
}

// Expand returns one entry per worker, named "<group>_<n>" and running the
// expanded command
func (g ServiceGroup) Expand() ([]Entry, error) {
	if g.Command == "" {
		return nil, missing(g.Name, keyCommand)
	}

	names, err := GenerateWorkerNames(g.Name, g.Command, g.Workers)
	if err != nil {
		return nil, fmt.Errorf("group %q: %w", g.Name, err)
	}

	entries := make([]Entry, 0, len(names))
	for n, worker := range names {
		// group names may contain "/" themselves, so cut at the known prefix
		name := g.Name + "_" + strconv.Itoa(n)
		command := strings.TrimPrefix(worker, name+"/")

		raw := g.Base
		raw.Command = command
		entries = append(entries, Entry{Name: name, Raw: raw})
	}
	return entries, nil
}
