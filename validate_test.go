package svcspec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testService = "rspecsvc"

func basicRaw() RawSpec {
	return RawSpec{Command: "/bin/true", User: "fred"}
}

func TestValidateDefaults(t *testing.T) {
	spec, err := Validate(testService, basicRaw(), DefaultLayout())
	require.NoError(t, err)

	assert.Equal(t, testService, spec.Name)
	assert.Equal(t, "/bin/true", spec.Command)
	assert.Equal(t, "fred", spec.User)
	assert.Equal(t, "/var/lib/service/rspecsvc", spec.Directory)
	assert.True(t, spec.Setuid)
	assert.False(t, spec.UseSecondaryGroups)
	assert.Equal(t, EnsureUnset, spec.Ensure)
	assert.Equal(t, LogConfig{Enabled: true, Command: "/usr/bin/multilog t ./main"}, spec.Log)
	assert.Equal(t, SudoNone, spec.SudoControl)
	assert.Equal(t, "fred", spec.SudoUser)
	assert.Empty(t, spec.PreCommand)
	assert.Empty(t, spec.Limits)
	assert.Empty(t, spec.Environment)
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*RawSpec)
		sentinel error
		field    string
		errMsg   string
	}{
		{
			name:     "no options",
			mutate:   func(r *RawSpec) { *r = RawSpec{} },
			sentinel: ErrMissingField,
			field:    "command",
			errMsg:   `service "rspecsvc": must pass command`,
		},
		{
			name:     "just a command",
			mutate:   func(r *RawSpec) { r.User = "" },
			sentinel: ErrMissingField,
			field:    "user",
			errMsg:   `service "rspecsvc": must pass user`,
		},
		{
			name:     "invalid username",
			mutate:   func(r *RawSpec) { r.User = "Michael Jackson" },
			sentinel: ErrInvalidValue,
			field:    "user",
			errMsg:   "invalid value for user: Michael Jackson",
		},
		{
			name:     "user with shell metacharacters",
			mutate:   func(r *RawSpec) { r.User = "fred;rm" },
			sentinel: ErrInvalidValue,
			field:    "user",
		},
		{
			name:     "relative directory",
			mutate:   func(r *RawSpec) { r.Directory = "../../../etc/passwd" },
			sentinel: ErrInvalidValue,
			field:    "directory",
			errMsg:   "directory must be an absolute path",
		},
		{
			name:     "absolute directory with traversal",
			mutate:   func(r *RawSpec) { r.Directory = "/srv/../etc" },
			sentinel: ErrInvalidValue,
			field:    "directory",
		},
		{
			name:     "secondary groups with setuid",
			mutate:   func(r *RawSpec) { r.UseSecondaryGroups = Bool(true) },
			sentinel: ErrConflict,
			field:    "use_secondary_groups",
			errMsg:   "use_secondary_groups requires setuid to be false",
		},
		{
			name: "secondary groups with explicit setuid",
			mutate: func(r *RawSpec) {
				r.Setuid = Bool(true)
				r.UseSecondaryGroups = Bool(true)
			},
			sentinel: ErrConflict,
			field:    "use_secondary_groups",
		},
		{
			name:     "gibberish sudo_control",
			mutate:   func(r *RawSpec) { r.SudoControl = "gibberish" },
			sentinel: ErrUnrecognized,
			field:    "sudo_control",
			errMsg:   "invalid value for sudo_control: gibberish",
		},
		{
			name:     "unknown ensure",
			mutate:   func(r *RawSpec) { r.Ensure = "sleeping" },
			sentinel: ErrUnrecognized,
			field:    "ensure",
			errMsg:   "invalid value for ensure: sleeping",
		},
		{
			name:     "non-octal umask",
			mutate:   func(r *RawSpec) { r.Umask = "0999" },
			sentinel: ErrInvalidValue,
			field:    "umask",
		},
		{
			name:     "negative limit",
			mutate:   func(r *RawSpec) { r.Limits = map[string]int64{"processes": -1} },
			sentinel: ErrInvalidValue,
			field:    "limit_processes",
		},
		{
			name:     "unknown limit",
			mutate:   func(r *RawSpec) { r.Limits = map[string]int64{"nice": 5} },
			sentinel: ErrUnrecognized,
			field:    "limit kind",
		},
		{
			name:     "bad environment key",
			mutate:   func(r *RawSpec) { r.Environment = map[string]string{"1FOO": "bar"} },
			sentinel: ErrInvalidValue,
			field:    "environment",
		},
		{
			name:     "newline in environment value",
			mutate:   func(r *RawSpec) { r.Environment = map[string]string{"FOO": "a\nb"} },
			sentinel: ErrInvalidValue,
			field:    "environment.FOO",
		},
		{
			name:     "invalid sudo_user",
			mutate:   func(r *RawSpec) { r.SudoUser = "bob smith" },
			sentinel: ErrInvalidValue,
			field:    "sudo_user",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := basicRaw()
			tt.mutate(&raw)

			spec, err := Validate(testService, raw, DefaultLayout())
			require.Error(t, err)
			assert.Nil(t, spec)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, tt.field, ErrorField(err))
			if tt.errMsg != "" {
				assert.Contains(t, err.Error(), tt.errMsg)
			}
		})
	}
}

func TestValidateOrder(t *testing.T) {
	// command is checked before user, user before sudo_control
	_, err := Validate(testService, RawSpec{SudoControl: "gibberish"}, DefaultLayout())
	assert.Equal(t, "command", ErrorField(err))

	_, err = Validate(testService, RawSpec{Command: "/bin/true", User: "bad user", SudoControl: "gibberish"}, DefaultLayout())
	assert.Equal(t, "user", ErrorField(err))
}

func TestValidateConflictNamesBothFields(t *testing.T) {
	raw := basicRaw()
	raw.UseSecondaryGroups = Bool(true)

	_, err := Validate(testService, raw, DefaultLayout())

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.ElementsMatch(t, []string{"use_secondary_groups", "setuid"}, cerr.Fields)
}

func TestValidateUnrecognizedEchoesValue(t *testing.T) {
	raw := basicRaw()
	raw.SudoControl = "Gibberish With Spaces"

	_, err := Validate(testService, raw, DefaultLayout())

	var uerr *UnrecognizedEnumError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "Gibberish With Spaces", uerr.Value)
}

func TestValidateAccepts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RawSpec)
		check  func(*testing.T, *ServiceSpec)
	}{
		{
			name:   "custom directory",
			mutate: func(r *RawSpec) { r.Directory = "/sleepy/hollow" },
			check: func(t *testing.T, s *ServiceSpec) {
				assert.Equal(t, "/sleepy/hollow", s.Directory)
			},
		},
		{
			name: "secondary groups without setuid",
			mutate: func(r *RawSpec) {
				r.Setuid = Bool(false)
				r.UseSecondaryGroups = Bool(true)
			},
			check: func(t *testing.T, s *ServiceSpec) {
				assert.False(t, s.Setuid)
				assert.True(t, s.UseSecondaryGroups)
			},
		},
		{
			name:   "log disabled",
			mutate: func(r *RawSpec) { r.Log = LogEnabled(false) },
			check: func(t *testing.T, s *ServiceSpec) {
				assert.Equal(t, LogConfig{}, s.Log)
			},
		},
		{
			name:   "log command",
			mutate: func(r *RawSpec) { r.Log = LogCommand("/usr/sbin/awesant") },
			check: func(t *testing.T, s *ServiceSpec) {
				assert.Equal(t, LogConfig{Enabled: true, Command: "/usr/sbin/awesant"}, s.Log)
			},
		},
		{
			name:   "present ensure",
			mutate: func(r *RawSpec) { r.Ensure = "present" },
			check: func(t *testing.T, s *ServiceSpec) {
				assert.Equal(t, EnsureUnset, s.Ensure)
			},
		},
		{
			name:   "sudo user",
			mutate: func(r *RawSpec) { r.SudoUser = "bob" },
			check: func(t *testing.T, s *ServiceSpec) {
				assert.Equal(t, "bob", s.SudoUser)
			},
		},
		{
			name:   "sudo true",
			mutate: func(r *RawSpec) { r.SudoControl = "true" },
			check: func(t *testing.T, s *ServiceSpec) {
				assert.Equal(t, SudoPrimary, s.SudoControl)
			},
		},
		{
			name:   "sudo false",
			mutate: func(r *RawSpec) { r.SudoControl = "false" },
			check: func(t *testing.T, s *ServiceSpec) {
				assert.Equal(t, SudoNone, s.SudoControl)
			},
		},
		{
			name:   "sudo alternate",
			mutate: func(r *RawSpec) { r.SudoControl = "allah" },
			check: func(t *testing.T, s *ServiceSpec) {
				assert.Equal(t, SudoAlternate, s.SudoControl)
			},
		},
		{
			name:   "pre_command text",
			mutate: func(r *RawSpec) { r.PreCommand = PreCommandText("/bin/mkdir /var/run/ffs\n\n/bin/touch /my/self\n") },
			check: func(t *testing.T, s *ServiceSpec) {
				assert.Equal(t, []string{"/bin/mkdir /var/run/ffs", "/bin/touch /my/self"}, s.PreCommand)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := basicRaw()
			tt.mutate(&raw)

			spec, err := Validate(testService, raw, DefaultLayout())
			require.NoError(t, err)
			tt.check(t, spec)
		})
	}
}

func TestValidateCustomBackends(t *testing.T) {
	layout := DefaultLayout()
	layout.AlternateBackend = GrantBackend{Name: "doas", Scope: ScopeName}

	raw := basicRaw()
	raw.SudoControl = "doas"
	spec, err := Validate(testService, raw, layout)
	require.NoError(t, err)
	assert.Equal(t, SudoAlternate, spec.SudoControl)

	raw.SudoControl = "allah"
	_, err = Validate(testService, raw, layout)
	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestValidateServiceName(t *testing.T) {
	for _, name := range []string{"", "/abs", "a/../b", "has space", "trailing/"} {
		t.Run(name, func(t *testing.T) {
			_, err := Validate(name, basicRaw(), DefaultLayout())
			require.Error(t, err)
			assert.Equal(t, "name", ErrorField(err))
		})
	}

	_, err := Validate("rspecsvc/log", basicRaw(), DefaultLayout())
	assert.NoError(t, err)
}
