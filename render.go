package svcspec

import (
	"fmt"
	"sort"
	"strings"
)

// RenderRun generates the run script for a validated service using the
// default tool names. The output is byte-identical for identical specs.
func RenderRun(spec *ServiceSpec) string {
	return RenderRunWithLayout(spec, DefaultLayout())
}

// RenderRunWithLayout generates the run script for a validated service.
// Lines are emitted in a fixed order because later lines rely on the shell
// state set up by earlier ones.
func RenderRunWithLayout(spec *ServiceSpec, layout Layout) string {
	// Calculate capacity needed
	capacity := 3 + len(spec.Limits) + len(spec.Environment) + len(spec.PreCommand)
	if spec.Umask != "" {
		capacity++
	}

	lines := make([]string, 0, capacity)
	lines = append(lines, Shebang)
	lines = append(lines, fmt.Sprintf("cd %s || exit %d", quoteIfNeeded(spec.Directory), ChdirFailExit))

	for _, kind := range LimitKinds() {
		if value, ok := spec.Limits[kind]; ok {
			lines = append(lines, fmt.Sprintf("ulimit %s %d", kind.Flag(), value))
		}
	}

	if spec.Umask != "" {
		lines = append(lines, "umask "+spec.Umask)
	}

	keys := make([]string, 0, len(spec.Environment))
	for key := range spec.Environment {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("export %s=%s", key, ShellQuote(spec.Environment[key])))
	}

	lines = append(lines, spec.PreCommand...)
	lines = append(lines, execLine(spec, layout))

	return strings.Join(lines, "\n") + "\n"
}

// execLine picks the privilege-drop tool from (setuid, use_secondary_groups)
func execLine(spec *ServiceSpec, layout Layout) string {
	tool := layout.SetuidgidPath
	switch {
	case spec.Setuid:
	case spec.UseSecondaryGroups:
		tool = layout.SuPath
	default:
		tool = layout.EnvuidgidPath
	}
	return fmt.Sprintf("exec %s %s %s", tool, spec.User, spec.Command)
}
