package safety

import "regexp"

// dangerousLiterals are matched as case-insensitive substrings of the
// trimmed, lower-cased command.
var dangerousLiterals = []string{
	"rm -rf /",
	"rm -rf /bin",
	"rm -rf /usr",
	"rm -rf /etc",
	"rm -rf /var",
	"rm -rf /sys",
	"rm -rf /proc",
	"rm -rf /boot",
	"rm -rf /root",
	"mkfs",
	"fdisk",
	"parted",
	"dd if=",
	"dd of=",
	":(){:|:&};:",
	"chmod -R 777 /",
	"chmod -R 000 /",
	"chown -R",
	"sudo rm",
	"sudo mkfs",
	"sudo fdisk",
	"sudo dd",
	"sudo chmod",
	"sudo chown",
	"systemctl stop",
	"systemctl disable",
	"service stop",
	"iptables -F",
	"iptables -X",
	"export PATH=",
	"unset PATH",
}

// dangerousPatterns catch variable whitespace/argument forms the literal
// list can't express.
var dangerousPatterns = compilePatterns(
	`rm\s+-rf\s+/[^/]`,
	`rm\s+-rf\s+/(bin|usr|etc|var|sys|proc|boot|root)`,
	`mkfs\.?\w*\s+/`,
	`dd\s+if=.*\s+of=/dev/`,
	`chmod\s+[0-7]{3}\s+/`,
	`sudo\s+(rm|mkfs|fdisk|dd|chmod|chown)`,
	`:\(\)\{.*:\|.*&.*\};:`,
)

// sudoDangerousOps flags a sudo invocation as dangerous whenever it also
// mentions one of these operations, even with irregular spacing that the
// literal/regex lists above miss (e.g. "sudo  rm", "sudo bash -c 'rm ...'").
var sudoDangerousOps = []string{"rm", "mkfs", "fdisk", "dd", "chmod", "chown", "format", "wipe"}

// systemRootPaths are checked against the original (not lower-cased)
// command so path casing used by the caller is preserved in matching.
var systemRootPaths = []string{"/bin", "/usr", "/etc", "/var", "/sys", "/proc", "/boot", "/root", "/sbin", "/lib"}

// highRiskKeywords classify a command as high-risk when dangerous didn't
// already match.
var highRiskKeywords = []string{"rm -rf", "mkfs", "fdisk", "dd if=", "dd of=", "format", "wipe"}

// injectionSeparators are shell separators whose right-hand side is
// checked for a leading "rm".
var injectionSeparators = []string{";", "&&", "||", "`", "$("}

func compilePatterns(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile("(?i)"+e))
	}
	return out
}
