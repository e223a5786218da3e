package safety

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		command string
		want    Class
	}{
		{"empty", "", Invalid},
		{"whitespace only", "   \t\n", Invalid},
		{"plain ls", "ls -la", Safe},
		{"rm root literal", "rm -rf /", Dangerous},
		{"rm root subdir", "rm -rf /etc/passwd", Dangerous},
		{"rm rf tmp", "rm -rf /tmp/build", HighRisk},
		{"mkfs", "mkfs.ext4 /dev/sda1", Dangerous},
		{"fork bomb", ":(){:|:&};:", Dangerous},
		{"sudo rm", "sudo rm -rf /tmp/x", Dangerous},
		{"sudo apt", "sudo apt-get update", Sudo},
		{"chained rm high-risk", "ls; rm -rf /tmp/x", HighRisk},
		{"chained rm injection", "ls; rm important-file", InjectionSuspected},
		{"chained safe", "ls && echo done", Safe},
		{"case insensitive", "RM -RF /ETC", Dangerous},
	}

	o := NewOracle(true)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := o.Classify(tc.command)
			assert.Equalf(t, tc.want, got, "Classify(%q)", tc.command)
		})
	}
}

func TestClassifySafeModeDisabled(t *testing.T) {
	o := NewOracle(false)
	got, _ := o.Classify("rm -rf /")
	assert.Equal(t, Safe, got, "with safe mode off, dangerous commands classify as safe")

	got, _ = o.Classify("")
	assert.Equal(t, Invalid, got, "empty command must still be Invalid with safe mode off")
}

func TestClassifyTooLong(t *testing.T) {
	o := NewOracle(true)
	long := make([]byte, 10_001)
	for i := range long {
		long[i] = 'a'
	}
	got, _ := o.Classify(string(long))
	assert.Equal(t, Invalid, got, "expected Invalid for oversized command")
}
