// Package llm defines the Client contract the Agent Loop calls into, plus
// concrete backends and a Registry for selecting among configured ones.
package llm
