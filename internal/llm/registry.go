package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shellmind-ai/shellmind/internal/logging"
)

// Registry holds every configured backend, keyed by provider name
// ("openai", "local", ...), and exposes a default.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client
	defaultP string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds a backend under name. The first registration becomes the
// default unless SetDefault is called explicitly.
func (r *Registry) Register(name string, c Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = c
	if r.defaultP == "" {
		r.defaultP = name
	}
}

// SetDefault designates which registered backend Default returns.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[name]; !ok {
		return fmt.Errorf("llm: no such provider registered: %s", name)
	}
	r.defaultP = name
	return nil
}

// Get retrieves a backend by name.
func (r *Registry) Get(name string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("llm: no such provider registered: %s", name)
	}
	return c, nil
}

// Default returns the registry's default backend.
func (r *Registry) Default() (Client, error) {
	r.mu.RLock()
	name := r.defaultP
	r.mu.RUnlock()
	if name == "" {
		return nil, errors.New("llm: no providers registered")
	}
	return r.Get(name)
}

// Names lists every registered backend name.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	return names
}

// RetryingClient wraps a Client with exponential backoff over transient
// failures (ErrTimeout, ErrTransport), leaving ErrEmptyResponse and
// context cancellation to propagate immediately since retrying those
// wastes a step budget the Agent Loop is already counting down.
type RetryingClient struct {
	inner      Client
	maxRetries uint64
}

// NewRetryingClient wraps inner with up to maxRetries extra attempts.
func NewRetryingClient(inner Client, maxRetries uint64) *RetryingClient {
	return &RetryingClient{inner: inner, maxRetries: maxRetries}
}

// Generate implements Client, retrying transport/timeout failures.
func (r *RetryingClient) Generate(ctx context.Context, messages []Message, temperature float64, maxTokens int, timeout time.Duration) (string, error) {
	var result string
	attempt := 0

	operation := func() error {
		attempt++
		out, err := r.inner.Generate(ctx, messages, temperature, maxTokens, timeout)
		if err != nil {
			if errors.Is(err, ErrEmptyResponse) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			logging.Logger.Warn().Err(err).Int("attempt", attempt).Msg("llm: generate failed, retrying")
			return err
		}
		result = out
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries)
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return "", err
	}
	return result, nil
}

// ModelName implements Client.
func (r *RetryingClient) ModelName() string { return r.inner.ModelName() }

// TokenStats implements Client.
func (r *RetryingClient) TokenStats() TokenStats { return r.inner.TokenStats() }

// ResetTokenStats implements Client.
func (r *RetryingClient) ResetTokenStats() { r.inner.ResetTokenStats() }
