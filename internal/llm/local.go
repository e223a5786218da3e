package llm

import "context"

// LocalConfig configures a locally hosted backend reachable over an
// OpenAI-compatible HTTP API (llama.cpp server, ollama, vLLM, ...),
// mirroring the original LocalLlamaLLM's role without requiring a cgo
// binding to llama.cpp itself.
type LocalConfig struct {
	BaseURL   string
	Model     string
	MaxTokens int
}

// NewLocalClient builds a Client against a local OpenAI-compatible server.
// It is a thin alias over NewOpenAIClient: the wire protocol is identical,
// only the base URL and the absence of a required API key differ.
func NewLocalClient(ctx context.Context, cfg LocalConfig) (Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://127.0.0.1:8080/v1"
	}
	return NewOpenAIClient(ctx, OpenAIConfig{
		APIKey:    "local",
		BaseURL:   cfg.BaseURL,
		Model:     cfg.Model,
		MaxTokens: cfg.MaxTokens,
	})
}
