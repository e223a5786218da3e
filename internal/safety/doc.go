// Package safety classifies shell commands without executing them. See
// Oracle.Classify for the ordered rule set (invalid, dangerous, high-risk,
// sudo, injection-suspected, safe).
package safety
