package svcspec

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValidate(t *testing.T, raw RawSpec) *ServiceSpec {
	t.Helper()
	spec, err := Validate(testService, raw, DefaultLayout())
	require.NoError(t, err)
	return spec
}

func TestRenderRunBasic(t *testing.T) {
	got := RenderRun(mustValidate(t, basicRaw()))

	want := "#!/bin/sh\n" +
		"cd /var/lib/service/rspecsvc || exit 111\n" +
		"exec setuidgid fred /bin/true\n"
	assert.Equal(t, want, got)
}

func TestRenderRunFull(t *testing.T) {
	raw := basicRaw()
	raw.Directory = "/srv/app"
	raw.Limits = map[string]int64{"processes": 64, "data_segment": 1024}
	raw.Umask = "0003"
	raw.Environment = map[string]string{"FOO": "bar", "BAZ": "wombat"}
	raw.PreCommand = PreCommandList("/bin/mkdir -p /var/run/app", "/bin/chown fred /var/run/app")

	got := RenderRun(mustValidate(t, raw))

	want := "#!/bin/sh\n" +
		"cd /srv/app || exit 111\n" +
		"ulimit -d 1024\n" +
		"ulimit -u 64\n" +
		"umask 0003\n" +
		"export BAZ='wombat'\n" +
		"export FOO='bar'\n" +
		"/bin/mkdir -p /var/run/app\n" +
		"/bin/chown fred /var/run/app\n" +
		"exec setuidgid fred /bin/true\n"
	assert.Equal(t, want, got)
}

func TestRenderRunDeterministic(t *testing.T) {
	raw := basicRaw()
	raw.Environment = map[string]string{"A": "1", "B": "2", "C": "3", "D": "4", "E": "5", "F": "6"}
	raw.Limits = map[string]int64{}
	for _, kind := range LimitKinds() {
		raw.Limits[kind.String()] = int64(kind) + 1
	}
	spec := mustValidate(t, raw)

	first := RenderRun(spec)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, RenderRun(spec))
		assert.Equal(t, first, RenderRun(spec.Clone()))
	}
}

func TestRenderRunCustomDirectory(t *testing.T) {
	raw := basicRaw()
	raw.Directory = "/sleepy/hollow"

	got := RenderRun(mustValidate(t, raw))
	assert.Regexp(t, regexp.MustCompile(`(?m)^cd /sleepy/hollow `), got)
}

func TestRenderRunDirectoryWithSpace(t *testing.T) {
	raw := basicRaw()
	raw.Directory = "/srv/my app"

	got := RenderRun(mustValidate(t, raw))
	assert.Contains(t, got, "\ncd '/srv/my app' || exit 111\n")
}

func TestRenderRunExec(t *testing.T) {
	tests := []struct {
		name      string
		setuid    *bool
		secondary *bool
		want      string
	}{
		{"default", nil, nil, "exec setuidgid fred /bin/true"},
		{"setuid false", Bool(false), nil, "exec envuidgid fred /bin/true"},
		{"secondary groups", Bool(false), Bool(true), "exec su fred /bin/true"},
		{"explicit false secondary", Bool(true), Bool(false), "exec setuidgid fred /bin/true"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := basicRaw()
			raw.Setuid = tt.setuid
			raw.UseSecondaryGroups = tt.secondary

			got := RenderRun(mustValidate(t, raw))
			assert.Regexp(t, regexp.MustCompile("(?m)^"+regexp.QuoteMeta(tt.want)+"$"), got)
			assert.True(t, strings.HasSuffix(got, tt.want+"\n"), "exec must be the last line")
		})
	}
}

func TestRenderRunEnvironment(t *testing.T) {
	raw := basicRaw()
	raw.Environment = map[string]string{
		"FOO":    "bar",
		"BAZ":    "wombat",
		"DIRTY":  `"pool", that's what this is`,
		"RANSOM": "$1,000,000",
	}

	got := RenderRun(mustValidate(t, raw))

	for _, want := range []string{
		`^export FOO='bar'$`,
		`^export BAZ='wombat'$`,
		`^export DIRTY='"pool", that'\\''s what this is'$`,
		`^export RANSOM='\$1,000,000'$`,
	} {
		assert.Regexp(t, regexp.MustCompile("(?m)"+want), got)
	}
}

func TestRenderRunLimits(t *testing.T) {
	flags := map[string]string{
		"data_segment":     "-d",
		"stack_segment":    "-s",
		"file_descriptors": "-n",
		"processes":        "-u",
		"file_size":        "-f",
		"core_size":        "-c",
		"rss":              "-m",
		"cpu_time":         "-t",
		"virtual_memory":   "-v",
		"locked_memory":    "-l",
	}
	require.Len(t, LimitKinds(), len(flags))

	for attr, opt := range flags {
		t.Run(attr, func(t *testing.T) {
			raw := basicRaw()
			raw.Limits = map[string]int64{attr: 42}

			got := RenderRun(mustValidate(t, raw))

			ulimits := regexp.MustCompile(`(?m)^ulimit .*$`).FindAllString(got, -1)
			assert.Equal(t, []string{fmt.Sprintf("ulimit %s 42", opt)}, ulimits)
		})
	}
}

func TestRenderRunUmask(t *testing.T) {
	raw := basicRaw()
	raw.Umask = "0003"

	got := RenderRun(mustValidate(t, raw))
	assert.Regexp(t, regexp.MustCompile(`(?m)^umask 0003$`), got)
}

func TestRenderRunPreCommand(t *testing.T) {
	tests := []struct {
		name string
		pre  PreCommand
		want []string
	}{
		{
			name: "single command",
			pre:  PreCommandText("/bin/mkdir /var/run/ffs"),
			want: []string{"/bin/mkdir /var/run/ffs"},
		},
		{
			name: "string of commands",
			pre:  PreCommandText("/bin/mkdir /var/run/ffs\n/bin/touch /my/self"),
			want: []string{"/bin/mkdir /var/run/ffs", "/bin/touch /my/self"},
		},
		{
			name: "array of commands",
			pre:  PreCommandList("/bin/mkdir /var/run/ffs", "/bin/touch /my/self"),
			want: []string{"/bin/mkdir /var/run/ffs", "/bin/touch /my/self"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := basicRaw()
			raw.PreCommand = tt.pre

			lines := strings.Split(strings.TrimSuffix(RenderRun(mustValidate(t, raw)), "\n"), "\n")
			// shebang, cd, pre-commands, exec
			require.Len(t, lines, 3+len(tt.want))
			assert.Equal(t, tt.want, lines[2:2+len(tt.want)])
		})
	}
}

func TestRenderRunWithLayout(t *testing.T) {
	layout := DefaultLayout()
	layout.SetuidgidPath = "/usr/local/bin/setuidgid"

	got := RenderRunWithLayout(mustValidate(t, basicRaw()), layout)
	assert.True(t, strings.HasSuffix(got, "exec /usr/local/bin/setuidgid fred /bin/true\n"))
}
