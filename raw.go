package svcspec

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Raw record keys
const (
	keyCommand            = "command"
	keyUser               = "user"
	keyDirectory          = "directory"
	keySetuid             = "setuid"
	keyUseSecondaryGroups = "use_secondary_groups"
	keyEnsure             = "ensure"
	keyLog                = "log"
	keyEnvironment        = "environment"
	keyLimits             = "limits"
	keyLimitPrefix        = "limit_"
	keyUmask              = "umask"
	keyPreCommand         = "pre_command"
	keySudoControl        = "sudo_control"
	keySudoUser           = "sudo_user"
)

// PreCommand holds pre_command as supplied: one multi-line string or an
// explicit list
type PreCommand struct {
	text   string
	list   []string
	isList bool
}

// PreCommandText returns a PreCommand holding a single, possibly multi-line string
func PreCommandText(s string) PreCommand {
	return PreCommand{text: s}
}

// PreCommandList returns a PreCommand holding an explicit list of commands
func PreCommandList(cmds ...string) PreCommand {
	return PreCommand{list: append([]string(nil), cmds...), isList: true}
}

// IsList reports whether the commands were supplied as a list
func (p PreCommand) IsList() bool {
	return p.isList
}

// Commands returns one command per element. Text is split on newlines and
// blank lines are dropped; a list is returned verbatim.
func (p PreCommand) Commands() []string {
	if p.isList {
		return append([]string(nil), p.list...)
	}

	var cmds []string
	for _, line := range strings.Split(p.text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cmds = append(cmds, line)
	}
	return cmds
}

// LogValue holds log as supplied: a boolean or a consumer command
type LogValue struct {
	set     bool
	enabled bool
	command string
}

// LogEnabled returns a LogValue of true or false
func LogEnabled(enabled bool) LogValue {
	return LogValue{set: true, enabled: enabled}
}

// LogCommand returns a LogValue overriding the log consumer command
func LogCommand(cmd string) LogValue {
	return LogValue{set: true, enabled: true, command: cmd}
}

// RawSpec is an unvalidated service record. Zero values mean "not supplied".
type RawSpec struct {
	Command            string
	User               string
	Directory          string
	Setuid             *bool
	UseSecondaryGroups *bool
	Ensure             string
	Log                LogValue
	Environment        map[string]string
	// Limits is keyed by limit kind name, e.g. "file_descriptors"
	Limits     map[string]int64
	Umask      string
	PreCommand PreCommand
	// SudoControl is "true", "false", a backend name or "both"; empty means false
	SudoControl string
	SudoUser    string
}

// hasLogService reports whether the record, once valid, gets a companion log
// service
func (r RawSpec) hasLogService() bool {
	if r.Log.set && !r.Log.enabled {
		return false
	}
	ensure, ok := ParseEnsure(r.Ensure)
	return !ok || ensure != EnsureAbsent
}

// Bool returns a pointer to b, for RawSpec's optional booleans
func Bool(b bool) *bool {
	return &b
}

// ParseRaw converts an untyped configuration record, as decoded from YAML,
// TOML or JSON, into a RawSpec. Wrong value types and unknown keys are
// reported as validation errors. When a record has such an error and also
// lacks command or user, the missing field is reported instead. A record
// without errors is returned even when command or user is missing; Validate
// reports those.
func ParseRaw(service string, record map[string]any) (RawSpec, error) {
	var (
		raw       RawSpec
		firstErr  error
		fieldErrs = make(map[string]error)
	)

	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := record[key]
		if value == nil {
			continue
		}

		var err error
		switch {
		case key == keyCommand:
			raw.Command, err = asString(service, key, value)
		case key == keyUser:
			raw.User, err = asString(service, key, value)
		case key == keyDirectory:
			raw.Directory, err = asString(service, key, value)
		case key == keySetuid:
			var b bool
			b, err = asBool(service, key, value)
			raw.Setuid = &b
		case key == keyUseSecondaryGroups:
			var b bool
			b, err = asBool(service, key, value)
			raw.UseSecondaryGroups = &b
		case key == keyEnsure:
			raw.Ensure, err = asString(service, key, value)
		case key == keyLog:
			raw.Log, err = asLog(service, value)
		case key == keyEnvironment:
			raw.Environment, err = asStringMap(service, key, value)
		case key == keyLimits:
			err = parseLimits(service, value, &raw)
		case strings.HasPrefix(key, keyLimitPrefix):
			err = setLimit(service, strings.TrimPrefix(key, keyLimitPrefix), value, &raw)
		case key == keyUmask:
			raw.Umask, err = asUmask(service, value)
		case key == keyPreCommand:
			raw.PreCommand, err = asPreCommand(service, value)
		case key == keySudoControl:
			raw.SudoControl, err = asSudoControl(value)
		case key == keySudoUser:
			raw.SudoUser, err = asString(service, key, value)
		default:
			err = &ValidationError{
				Service: service,
				Field:   key,
				Reason:  fmt.Sprintf("unknown parameter %s", key),
				Err:     ErrInvalidValue,
			}
		}
		if err != nil {
			fieldErrs[key] = err
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	if firstErr != nil {
		return RawSpec{}, orderedError(service, record, fieldErrs, firstErr)
	}
	return raw, nil
}

// orderedError picks the error Validate would have reported first: a missing
// or malformed command, then user, then the first bad key in sorted order
func orderedError(service string, record map[string]any, fieldErrs map[string]error, firstErr error) error {
	for _, key := range []string{keyCommand, keyUser} {
		if record[key] == nil {
			return missing(service, key)
		}
		if err, ok := fieldErrs[key]; ok {
			return err
		}
	}
	return firstErr
}

func typeError(service, field string, value any, want string) error {
	return &ValidationError{
		Service: service,
		Field:   field,
		Value:   value,
		Reason:  fmt.Sprintf("%s must be %s, got %T", field, want, value),
		Err:     ErrInvalidValue,
	}
}

func asString(service, field string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", typeError(service, field, value, "a string")
	}
	return s, nil
}

func asBool(service, field string, value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
	}
	return false, typeError(service, field, value, "a boolean")
}

func asInt(service, field string, value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), nil
		}
	case float64:
		if v == math.Trunc(v) && math.Abs(v) <= 1<<53 {
			return int64(v), nil
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, typeError(service, field, value, "an integer")
}

func asStringMap(service, field string, value any) (map[string]string, error) {
	m, ok := value.(map[string]any)
	if !ok {
		return nil, typeError(service, field, value, "a mapping")
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case string:
			out[k] = vv
		case float64:
			out[k] = strconv.FormatFloat(vv, 'f', -1, 64)
		case bool, int, int64, uint64:
			out[k] = fmt.Sprint(vv)
		default:
			return nil, typeError(service, field+"."+k, v, "a scalar")
		}
	}
	return out, nil
}

// asUmask accepts "0022" as well as integers. YAML reads an unquoted 0022 as
// the octal number 18, so integers are formatted back in octal.
func asUmask(service string, value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		if v >= 0 {
			return fmt.Sprintf("%04o", v), nil
		}
	case int64:
		if v >= 0 {
			return fmt.Sprintf("%04o", v), nil
		}
	}
	return "", typeError(service, keyUmask, value, "an octal string")
}

func asLog(service string, value any) (LogValue, error) {
	switch v := value.(type) {
	case bool:
		return LogEnabled(v), nil
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return LogEnabled(b), nil
		}
		return LogCommand(v), nil
	}
	return LogValue{}, typeError(service, keyLog, value, "a boolean or a command")
}

func asPreCommand(service string, value any) (PreCommand, error) {
	switch v := value.(type) {
	case string:
		return PreCommandText(v), nil
	case []string:
		return PreCommandList(v...), nil
	case []any:
		cmds := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return PreCommand{}, typeError(service, fmt.Sprintf("%s[%d]", keyPreCommand, i), item, "a string")
			}
			cmds = append(cmds, s)
		}
		return PreCommandList(cmds...), nil
	}
	return PreCommand{}, typeError(service, keyPreCommand, value, "a string or a list of strings")
}

// asSudoControl stringifies the value; recognition happens in Validate so the
// error can echo whatever was received
func asSudoControl(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	}
	return fmt.Sprint(value), nil
}

func parseLimits(service string, value any, raw *RawSpec) error {
	m, ok := value.(map[string]any)
	if !ok {
		return typeError(service, keyLimits, value, "a mapping")
	}
	for k, v := range m {
		if err := setLimit(service, k, v, raw); err != nil {
			return err
		}
	}
	return nil
}

func setLimit(service, kind string, value any, raw *RawSpec) error {
	field := keyLimitPrefix + kind
	if _, ok := ParseLimitKind(kind); !ok {
		return &UnrecognizedEnumError{Service: service, Field: "limit kind", Value: kind}
	}

	n, err := asInt(service, field, value)
	if err != nil {
		return err
	}

	if raw.Limits == nil {
		raw.Limits = make(map[string]int64)
	}
	raw.Limits[kind] = n
	return nil
}
