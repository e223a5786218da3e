package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/shellmind-ai/shellmind/internal/logging"
)

// OpenAIConfig configures a remote, OpenAI-compatible backend. BaseURL
// being non-empty is what makes this backend double as the "local" one
// for servers that speak the OpenAI wire protocol (llama.cpp server,
// ollama, vLLM, ...).
type OpenAIConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// OpenAIClient is a Client backed by an OpenAI-compatible chat endpoint.
type OpenAIClient struct {
	chatModel einomodel.ToolCallingChatModel
	model     string

	mu    sync.Mutex
	stats TokenStats
}

// NewOpenAIClient builds an OpenAIClient, dialing nothing until the first
// Generate call.
func NewOpenAIClient(ctx context.Context, cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	modelCfg := &openai.ChatModelConfig{
		APIKey:              cfg.APIKey,
		Model:               cfg.Model,
		MaxCompletionTokens: &maxTokens,
	}
	if cfg.BaseURL != "" {
		modelCfg.BaseURL = cfg.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: build chat model: %v", ErrTransport, err)
	}

	return &OpenAIClient{chatModel: chatModel, model: cfg.Model}, nil
}

// Generate implements Client.
func (c *OpenAIClient) Generate(ctx context.Context, messages []Message, temperature float64, maxTokens int, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := []einomodel.Option{openai.WithMaxCompletionTokens(maxTokens)}
	if temperature > 0 {
		opts = append(opts, einomodel.WithTemperature(float32(temperature)))
	}

	stream, err := c.chatModel.Stream(callCtx, toEinoMessages(messages), opts...)
	if err != nil {
		if callCtx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer stream.Close()

	var content strings.Builder
	var promptTokens, completionTokens int
	var usageSeen bool
	for {
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if callCtx.Err() != nil {
				return "", fmt.Errorf("%w: %v", ErrTimeout, err)
			}
			return "", fmt.Errorf("%w: %v", ErrTransport, err)
		}
		content.WriteString(chunk.Content)
		if chunk.ResponseMeta != nil && chunk.ResponseMeta.Usage != nil {
			promptTokens = chunk.ResponseMeta.Usage.PromptTokens
			completionTokens = chunk.ResponseMeta.Usage.CompletionTokens
			usageSeen = true
		}
	}

	result := strings.TrimSpace(content.String())
	if usageSeen {
		c.recordUsage(promptTokens, completionTokens)
	}
	if result == "" {
		return "", ErrEmptyResponse
	}

	logging.Logger.Debug().Int("prompt_tokens", promptTokens).Int("completion_tokens", completionTokens).Msg("llm: generation complete")
	return result, nil
}

func (c *OpenAIClient) recordUsage(prompt, completion int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.PromptTokens += prompt
	c.stats.CompletionTokens += completion
	c.stats.TotalTokens += prompt + completion
	c.stats.Calls++
}

// ModelName implements Client.
func (c *OpenAIClient) ModelName() string { return c.model }

// TokenStats implements Client.
func (c *OpenAIClient) TokenStats() TokenStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ResetTokenStats implements Client.
func (c *OpenAIClient) ResetTokenStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = TokenStats{}
}

func toEinoMessages(messages []Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(messages))
	for _, m := range messages {
		role := schema.User
		switch m.Role {
		case RoleSystem:
			role = schema.System
		case RoleAssistant:
			role = schema.Assistant
		}
		out = append(out, &schema.Message{Role: role, Content: m.Content})
	}
	return out
}
