package agent

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/shellmind-ai/shellmind/internal/safety"
)

// AgentModeType selects whether Interaction intents and normal-command
// confirmation prompts are honored.
type AgentModeType int

const (
	ModeAuto AgentModeType = iota
	ModeInteractive
)

// RunMode is the small, persisted slice of configuration governing
// confirmation and interaction behavior, per the preferences file.
type RunMode struct {
	AgentModeType  AgentModeType
	RequireConfirm bool
	// AllowPatterns are glob patterns (matched with doublestar, so `**`
	// crosses path separators) that skip the Normal-confirm prompt for an
	// otherwise-safe command. They never suppress the Sudo or High-risk
	// gates, which are mandatory regardless of mode.
	AllowPatterns []string
}

// Asker prompts the user for a yes/no answer, returning their choice. The
// UI collaborator implements this; tests use a scripted stub.
type Asker interface {
	ConfirmYesNo(prompt string, defaultYes bool) bool
}

// confirmationGate is one independently-triggered requirement to prompt,
// carrying its own prompt text and default answer. Rules are additive: a
// command can trip more than one gate, and every tripped gate must be
// individually confirmed.
type confirmationGate struct {
	prompt     string
	defaultYes bool
}

// requiredGates returns every confirmation gate a command of class cls
// trips under mode. A dangerous command never reaches here — the caller
// refuses it before consulting confirmation at all.
func requiredGates(cls safety.Class, command string, mode RunMode) []confirmationGate {
	var gates []confirmationGate

	if cls == safety.Sudo || isSudoPrefixed(command) {
		gates = append(gates, confirmationGate{
			prompt:     "此命令需要 sudo 权限，是否继续执行？",
			defaultYes: false,
		})
	}

	if cls == safety.HighRisk {
		gates = append(gates, confirmationGate{
			prompt:     "此命令具有较高风险，是否继续执行？",
			defaultYes: false,
		})
	}

	if mode.AgentModeType == ModeInteractive && mode.RequireConfirm && !matchesAllowPattern(command, mode.AllowPatterns) {
		if len(gates) == 0 {
			gates = append(gates, confirmationGate{
				prompt:     "即将执行命令，是否继续？",
				defaultYes: true,
			})
		}
	}

	return gates
}

// isSudoPrefixed detects a leading "sudo " independently of the oracle, so
// the sudo gate also fires when safe mode is off and the oracle classifies
// every valid command as Safe.
func isSudoPrefixed(command string) bool {
	trimmed := command
	for len(trimmed) > 0 && (trimmed[0] == ' ' || trimmed[0] == '\t') {
		trimmed = trimmed[1:]
	}
	return len(trimmed) >= 5 && trimmed[:5] == "sudo "
}

// matchesAllowPattern matches patterns against the command's parsed
// program name and subcommand (e.g. "git status"), not the raw command
// line, so a pattern like "git *" allow-lists every git invocation
// regardless of quoting or argument order. ParseLeadingCommand uses real
// bash-grammar parsing rather than a naive split; commands it can't parse
// (e.g. genuinely malformed shell syntax) fall back to matching the raw
// command string.
func matchesAllowPattern(command string, patterns []string) bool {
	candidate := command
	if lead, ok := safety.ParseLeadingCommand(command); ok {
		candidate = lead.Name
		if lead.Subcommand != "" {
			candidate = lead.Name + " " + lead.Subcommand
		}
	}
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, candidate); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(p, command); err == nil && ok {
			return true
		}
	}
	return false
}

// confirm runs every gate a command trips, in order, short-circuiting (and
// reporting the overall decision as declined) on the first "no". Returns
// true only if every tripped gate was confirmed, or no gate was tripped.
func confirm(asker Asker, cls safety.Class, command string, mode RunMode) bool {
	for _, gate := range requiredGates(cls, command, mode) {
		if !asker.ConfirmYesNo(gate.prompt, gate.defaultYes) {
			return false
		}
	}
	return true
}
