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
	"github.com/cloudwego/eino-ext/components/model/claude"

	"github.com/shellmind-ai/shellmind/internal/logging"
)

// ClaudeConfig configures a remote backend against Anthropic's direct API.
type ClaudeConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

// ClaudeClient is a Client backed by Anthropic's Claude models, registered
// into the Provider Registry alongside OpenAIClient so the Agent Loop can
// target either without any change to its own code.
type ClaudeClient struct {
	chatModel einomodel.ToolCallingChatModel
	model     string

	mu    sync.Mutex
	stats TokenStats
}

// NewClaudeClient builds a ClaudeClient, dialing nothing until the first
// Generate call.
func NewClaudeClient(ctx context.Context, cfg ClaudeConfig) (*ClaudeClient, error) {
	if cfg.Model == "" {
		cfg.Model = "claude-3-5-haiku-20241022"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	modelCfg := &claude.Config{
		APIKey:    cfg.APIKey,
		Model:     cfg.Model,
		MaxTokens: maxTokens,
	}
	if cfg.BaseURL != "" {
		modelCfg.BaseURL = &cfg.BaseURL
	}

	chatModel, err := claude.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: build chat model: %v", ErrTransport, err)
	}

	return &ClaudeClient{chatModel: chatModel, model: cfg.Model}, nil
}

// Generate implements Client, accumulating the streamed response into the
// single-string contract §4.1 requires, the same way OpenAIClient does.
func (c *ClaudeClient) Generate(ctx context.Context, messages []Message, temperature float64, maxTokens int, timeout time.Duration) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := []einomodel.Option{}
	if maxTokens > 0 {
		opts = append(opts, einomodel.WithMaxTokens(maxTokens))
	}
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

	logging.Logger.Debug().Int("prompt_tokens", promptTokens).Int("completion_tokens", completionTokens).Msg("llm: claude generation complete")
	return result, nil
}

func (c *ClaudeClient) recordUsage(prompt, completion int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.PromptTokens += prompt
	c.stats.CompletionTokens += completion
	c.stats.TotalTokens += prompt + completion
	c.stats.Calls++
}

// ModelName implements Client.
func (c *ClaudeClient) ModelName() string { return c.model }

// TokenStats implements Client.
func (c *ClaudeClient) TokenStats() TokenStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// ResetTokenStats implements Client.
func (c *ClaudeClient) ResetTokenStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = TokenStats{}
}
