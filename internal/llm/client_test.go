package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeClient struct {
	model       string
	failures    int
	failWith    error
	calls       int
	lastMessage string
}

func (f *fakeClient) Generate(ctx context.Context, messages []Message, temperature float64, maxTokens int, timeout time.Duration) (string, error) {
	f.calls++
	if len(messages) > 0 {
		f.lastMessage = messages[len(messages)-1].Content
	}
	if f.calls <= f.failures {
		return "", f.failWith
	}
	return "ok", nil
}

func (f *fakeClient) ModelName() string          { return f.model }
func (f *fakeClient) TokenStats() TokenStats      { return TokenStats{} }
func (f *fakeClient) ResetTokenStats()            {}

func TestRegistryDefaultIsFirstRegistered(t *testing.T) {
	reg := NewRegistry()
	reg.Register("openai", &fakeClient{model: "gpt-4o-mini"})
	reg.Register("local", &fakeClient{model: "llama"})

	def, err := reg.Default()
	if err != nil {
		t.Fatal(err)
	}
	if def.ModelName() != "gpt-4o-mini" {
		t.Fatalf("expected first-registered provider as default, got %s", def.ModelName())
	}
}

func TestRegistrySetDefaultRejectsUnknown(t *testing.T) {
	reg := NewRegistry()
	reg.Register("openai", &fakeClient{model: "gpt-4o-mini"})
	if err := reg.SetDefault("nonexistent"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestRegistryDefaultWithNoProvidersErrors(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Default(); err == nil {
		t.Fatal("expected error when no providers registered")
	}
}

func TestRetryingClientRetriesTransportErrors(t *testing.T) {
	fc := &fakeClient{model: "gpt-4o-mini", failures: 2, failWith: ErrTransport}
	rc := NewRetryingClient(fc, 3)

	out, err := rc.Generate(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0.5, 100, time.Second)
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if out != "ok" {
		t.Fatalf("unexpected output %q", out)
	}
	if fc.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", fc.calls)
	}
}

func TestRetryingClientDoesNotRetryEmptyResponse(t *testing.T) {
	fc := &fakeClient{model: "gpt-4o-mini", failures: 5, failWith: ErrEmptyResponse}
	rc := NewRetryingClient(fc, 3)

	_, err := rc.Generate(context.Background(), nil, 0.5, 100, time.Second)
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse to propagate immediately, got %v", err)
	}
	if fc.calls != 1 {
		t.Fatalf("expected exactly 1 attempt for a non-retryable error, got %d", fc.calls)
	}
}

func TestRetryingClientExhaustsRetries(t *testing.T) {
	fc := &fakeClient{model: "gpt-4o-mini", failures: 10, failWith: ErrTimeout}
	rc := NewRetryingClient(fc, 2)

	_, err := rc.Generate(context.Background(), nil, 0.5, 100, time.Second)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout after exhausting retries, got %v", err)
	}
	if fc.calls != 3 {
		t.Fatalf("expected 1 initial + 2 retries = 3 attempts, got %d", fc.calls)
	}
}
