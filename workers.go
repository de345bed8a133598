package svcspec

import (
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// GenerateWorkerNames expands tmpl once per worker index and returns
// "<group>_<n>/<expansion>" for n in [0, count). Inside the template the
// index is bound to dot, so "/usr/bin/worker --id {{.}}" and
// "--port {{add . 8000}}" both work. Expansions may repeat; the index segment
// keeps every name distinct.
func GenerateWorkerNames(group, tmpl string, count int) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("worker count must not be negative: %d", count)
	}

	t, err := template.New(group).Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("parsing worker template for %q: %w", group, err)
	}

	names := make([]string, 0, count)
	var sb strings.Builder
	for n := 0; n < count; n++ {
		sb.Reset()
		if err := t.Execute(&sb, n); err != nil {
			return nil, fmt.Errorf("expanding worker template for %s_%d: %w", group, n, err)
		}
		names = append(names, group+"_"+strconv.Itoa(n)+"/"+sb.String())
	}

	return names, nil
}
