// Package safety implements the pure command classifier ("Safety Oracle")
// that the Agent Loop consults before a candidate shell command is ever
// handed to the Persistent Shell.
package safety

import (
	"strings"
)

// Class is the result of classifying a candidate command.
type Class int

const (
	// Safe commands require no special handling.
	Safe Class = iota
	// Sudo commands always require explicit confirmation.
	Sudo
	// HighRisk commands require confirmation when safe mode is on.
	HighRisk
	// Dangerous commands are refused outright when safe mode is on.
	Dangerous
	// InjectionSuspected commands chain an rm after a separator. The class
	// is informational: no confirmation gate is tied to it.
	InjectionSuspected
	// Invalid commands are empty, whitespace-only, or absurdly long.
	Invalid
)

func (c Class) String() string {
	switch c {
	case Safe:
		return "safe"
	case Sudo:
		return "sudo"
	case HighRisk:
		return "high-risk"
	case Dangerous:
		return "dangerous"
	case InjectionSuspected:
		return "injection-suspected"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

const maxCommandLength = 10_000

// Oracle classifies commands against the dangerous/high-risk pattern sets.
// Classify does not modify the Oracle; SetSafeMode is not synchronized
// with concurrent Classify calls.
type Oracle struct {
	safeMode bool
}

// NewOracle constructs an Oracle. When safeMode is false the oracle returns
// Safe for everything except Invalid.
func NewOracle(safeMode bool) *Oracle {
	return &Oracle{safeMode: safeMode}
}

// SetSafeMode toggles safe-mode at runtime.
func (o *Oracle) SetSafeMode(on bool) { o.safeMode = on }

// SafeMode reports the oracle's current safe-mode setting.
func (o *Oracle) SafeMode() bool { return o.safeMode }

// Classify returns the command's classification and, for non-Safe classes,
// a short human-readable reason suitable for an Observation message.
func (o *Oracle) Classify(command string) (Class, string) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" || len(command) > maxCommandLength {
		return Invalid, invalidReason(command)
	}

	if !o.safeMode {
		return Safe, ""
	}

	lower := strings.ToLower(trimmed)

	if isDangerous(trimmed, lower) {
		return Dangerous, "matched a dangerous command pattern"
	}

	if isHighRisk(lower) {
		return HighRisk, "high-risk command (destructive/format operation)"
	}

	if strings.HasPrefix(lower, "sudo ") {
		return Sudo, "requires elevated privileges"
	}

	if reason, ok := isInjectionSuspected(trimmed, lower); ok {
		return InjectionSuspected, reason
	}

	return Safe, ""
}

func invalidReason(command string) string {
	if strings.TrimSpace(command) == "" {
		return "empty command"
	}
	return "command exceeds maximum length"
}

func isDangerous(original, lower string) bool {
	for _, literal := range dangerousLiterals {
		if strings.Contains(lower, strings.ToLower(literal)) {
			return true
		}
	}
	for _, re := range dangerousPatterns {
		if re.MatchString(lower) {
			return true
		}
	}
	if strings.Contains(lower, "sudo") {
		for _, op := range sudoDangerousOps {
			if strings.Contains(lower, op) {
				return true
			}
		}
	}
	if strings.Contains(lower, "rm") && (strings.Contains(lower, "-rf") || strings.Contains(lower, "-r")) {
		for _, path := range systemRootPaths {
			if strings.Contains(original, path) {
				return true
			}
		}
	}
	return false
}

func isHighRisk(lower string) bool {
	for _, kw := range highRiskKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isInjectionSuspected reports whether command chains a destructive command
// after a shell separator, e.g. "ls; rm -rf foo".
func isInjectionSuspected(original, lower string) (string, bool) {
	for _, sep := range injectionSeparators {
		idx := strings.Index(original, sep)
		if idx == -1 {
			continue
		}
		rest := strings.TrimSpace(original[idx+len(sep):])
		if strings.HasPrefix(strings.ToLower(rest), "rm") {
			return "contains '" + sep + "' followed by rm", true
		}
	}
	return "", false
}
