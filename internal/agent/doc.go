// Package agent contains the Agent Loop, its conversation model, and the
// confirmation policy layered over the Safety Oracle's classifications.
// See Loop.Run for the entry point.
package agent
