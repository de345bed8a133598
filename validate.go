package svcspec

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

var (
	// identifierPattern restricts user names to characters safe in a run script
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	// envKeyPattern matches names a POSIX shell accepts in export
	envKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

	// umaskPattern matches a three or four digit octal mask
	umaskPattern = regexp.MustCompile(`^[0-7]{3,4}$`)
)

// Validate checks raw and returns the normalised specification for the named
// service. Checks run in a fixed order and stop at the first failure. The
// returned error is a *ValidationError, *ConflictError or
// *UnrecognizedEnumError.
func Validate(name string, raw RawSpec, layout Layout) (*ServiceSpec, error) {
	if raw.Command == "" {
		return nil, missing(name, keyCommand)
	}
	if raw.User == "" {
		return nil, missing(name, keyUser)
	}
	if !identifierPattern.MatchString(raw.User) {
		return nil, invalid(name, keyUser, raw.User, fmt.Sprintf("invalid value for user: %s", raw.User))
	}
	if raw.Directory != "" && !cleanAbsolute(raw.Directory) {
		return nil, invalid(name, keyDirectory, raw.Directory,
			fmt.Sprintf("directory must be an absolute path without '..': %s", raw.Directory))
	}

	setuid := raw.Setuid == nil || *raw.Setuid
	secondary := raw.UseSecondaryGroups != nil && *raw.UseSecondaryGroups
	if setuid && secondary {
		return nil, &ConflictError{
			Service: name,
			Fields:  []string{keyUseSecondaryGroups, keySetuid},
			Reason:  "use_secondary_groups requires setuid to be false",
		}
	}

	sudo, ok := parseSudoControl(raw.SudoControl, layout)
	if !ok {
		return nil, &UnrecognizedEnumError{Service: name, Field: keySudoControl, Value: raw.SudoControl}
	}

	ensure, ok := ParseEnsure(raw.Ensure)
	if !ok {
		return nil, &UnrecognizedEnumError{Service: name, Field: keyEnsure, Value: raw.Ensure}
	}

	if err := validateName(name); err != nil {
		return nil, err
	}
	if raw.Umask != "" && !umaskPattern.MatchString(raw.Umask) {
		return nil, invalid(name, keyUmask, raw.Umask, fmt.Sprintf("invalid value for umask: %s", raw.Umask))
	}

	limits, err := normaliseLimits(name, raw.Limits)
	if err != nil {
		return nil, err
	}

	env, err := normaliseEnvironment(name, raw.Environment)
	if err != nil {
		return nil, err
	}

	sudoUser := raw.SudoUser
	if sudoUser == "" {
		sudoUser = raw.User
	} else if !identifierPattern.MatchString(sudoUser) {
		return nil, invalid(name, keySudoUser, sudoUser, fmt.Sprintf("invalid value for sudo_user: %s", sudoUser))
	}

	directory := raw.Directory
	if directory == "" {
		directory = layout.StagingPath(name)
	}

	log := LogConfig{Enabled: true, Command: layout.DefaultLogCommand()}
	if raw.Log.set {
		log.Enabled = raw.Log.enabled
		if raw.Log.command != "" {
			log.Command = raw.Log.command
		}
	}
	if !log.Enabled {
		log.Command = ""
	}

	return &ServiceSpec{
		Name:               name,
		Command:            raw.Command,
		User:               raw.User,
		Directory:          directory,
		Setuid:             setuid,
		UseSecondaryGroups: secondary,
		Ensure:             ensure,
		Log:                log,
		Environment:        env,
		Limits:             limits,
		Umask:              raw.Umask,
		PreCommand:         raw.PreCommand.Commands(),
		SudoControl:        sudo,
		SudoUser:           sudoUser,
	}, nil
}

func missing(service, field string) error {
	return &ValidationError{
		Service: service,
		Field:   field,
		Reason:  fmt.Sprintf("must pass %s", field),
		Err:     ErrMissingField,
	}
}

func invalid(service, field string, value any, reason string) error {
	return &ValidationError{
		Service: service,
		Field:   field,
		Value:   value,
		Reason:  reason,
		Err:     ErrInvalidValue,
	}
}

// cleanAbsolute reports whether p is absolute and has no ".." segment
func cleanAbsolute(p string) bool {
	if !path.IsAbs(p) {
		return false
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// validateName accepts names usable as a path below the staging directory.
// Log services are named "<service>/log".
func validateName(name string) error {
	if name == "" {
		return missing(name, "name")
	}
	if path.IsAbs(name) || strings.ContainsAny(name, " \t\n") {
		return invalid(name, "name", name, fmt.Sprintf("invalid service name: %s", name))
	}
	for _, seg := range strings.Split(name, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return invalid(name, "name", name, fmt.Sprintf("invalid service name: %s", name))
		}
	}
	return nil
}

// parseSudoControl maps the raw value onto the layout's backends
func parseSudoControl(s string, layout Layout) (SudoControl, bool) {
	switch s {
	case "", "false":
		return SudoNone, true
	case "true", layout.PrimaryBackend.Name:
		return SudoPrimary, true
	case layout.AlternateBackend.Name:
		return SudoAlternate, true
	case sudoBothStr:
		return SudoBoth, true
	default:
		return SudoNone, false
	}
}

func normaliseLimits(service string, raw map[string]int64) (map[LimitKind]int64, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	limits := make(map[LimitKind]int64, len(raw))
	for name, value := range raw {
		kind, ok := ParseLimitKind(name)
		if !ok {
			return nil, &UnrecognizedEnumError{Service: service, Field: "limit kind", Value: name}
		}
		if value < 0 {
			field := keyLimitPrefix + name
			return nil, invalid(service, field, value, fmt.Sprintf("%s must not be negative: %d", field, value))
		}
		limits[kind] = value
	}
	return limits, nil
}

func normaliseEnvironment(service string, raw map[string]string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(raw))
	for key, value := range raw {
		if !envKeyPattern.MatchString(key) {
			return nil, invalid(service, keyEnvironment, key, fmt.Sprintf("invalid environment variable name: %s", key))
		}
		if strings.ContainsAny(value, "\n\r") {
			return nil, invalid(service, keyEnvironment+"."+key, value,
				fmt.Sprintf("environment variable %s must not contain a newline", key))
		}
		env[key] = value
	}
	return env, nil
}
