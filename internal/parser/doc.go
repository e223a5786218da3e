// Package parser decodes the agent wire protocol (Command / Interaction /
// Terminal) out of free-form assistant text. See Parse.
package parser
