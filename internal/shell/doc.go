// Package shell provides the Persistent Shell: a session whose working
// directory and exported environment carry forward across commands, via
// sidecar files sourced before each execution.
package shell
