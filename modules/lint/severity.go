package lint

import (
	"fmt"
	"strings"
)

// Severity of a finding.
type Severity int

const (
	// Off disables a rule.
	Off Severity = iota
	// Warning findings are advisory.
	Warning
	// Error findings are reported as errors.
	Error
)

// String returns a human-readable representation of the severity.
func (s Severity) String() string {
	switch s {
	case Off:
		return "off"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// scriptSetting is one decoded ESLint-style rule setting.
type scriptSetting struct {
	Severity Severity
	Options  []any
}

// parseScriptSetting accepts "off|warn|error", 0|1|2 or an array whose
// first element is one of those followed by rule options.
func parseScriptSetting(v any) (scriptSetting, error) {
	if list, ok := v.([]any); ok {
		if len(list) == 0 {
			return scriptSetting{}, fmt.Errorf("empty rule setting")
		}
		sev, err := parseScriptSeverity(list[0])
		if err != nil {
			return scriptSetting{}, err
		}
		return scriptSetting{Severity: sev, Options: list[1:]}, nil
	}
	sev, err := parseScriptSeverity(v)
	return scriptSetting{Severity: sev}, err
}

func parseScriptSeverity(v any) (Severity, error) {
	switch x := v.(type) {
	case string:
		switch strings.ToLower(x) {
		case "off", "0":
			return Off, nil
		case "warn", "1":
			return Warning, nil
		case "error", "2":
			return Error, nil
		}
	default:
		if n, ok := asInt(v); ok && n >= 0 && n <= 2 {
			return Severity(n), nil
		}
	}
	return Off, fmt.Errorf("invalid severity %v, want off, warn, error, 0, 1 or 2", v)
}

// styleSetting is one decoded stylelint-style rule setting.
type styleSetting struct {
	Severity Severity
	Primary  any
}

// parseStyleSetting accepts null or false (off), a primary option, or an
// array of [primary, {severity: "warning"|"error"}].
func parseStyleSetting(v any) (styleSetting, error) {
	switch x := v.(type) {
	case nil:
		return styleSetting{Severity: Off}, nil
	case bool:
		if !x {
			return styleSetting{Severity: Off}, nil
		}
		return styleSetting{Severity: Error, Primary: true}, nil
	case []any:
		if len(x) == 0 {
			return styleSetting{}, fmt.Errorf("empty rule setting")
		}
		s, err := parseStyleSetting(x[0])
		if err != nil || s.Severity == Off {
			return s, err
		}
		if len(x) > 1 {
			secondary, ok := asMap(x[1])
			if !ok {
				return styleSetting{}, fmt.Errorf("secondary options must be an object")
			}
			if raw, ok := secondary["severity"]; ok {
				switch raw {
				case "warning":
					s.Severity = Warning
				case "error":
					s.Severity = Error
				default:
					return styleSetting{}, fmt.Errorf("invalid severity %v, want warning or error", raw)
				}
			}
		}
		return s, nil
	default:
		return styleSetting{Severity: Error, Primary: v}, nil
	}
}

// asInt converts the numeric types produced by the JSON and YAML decoders.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}

// asMap accepts maps produced by the JSON and YAML decoders.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
