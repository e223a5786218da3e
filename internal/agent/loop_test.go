package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shellmind-ai/shellmind/internal/llm"
	"github.com/shellmind-ai/shellmind/internal/parser"
	"github.com/shellmind-ai/shellmind/internal/safety"
	"github.com/shellmind-ai/shellmind/internal/shell"
)

// scriptedLLM replays a fixed sequence of replies (or errors), one per
// Generate call, looping on the last entry once exhausted.
type scriptedLLM struct {
	replies []string
	errs    []error
	calls   int
}

func (s *scriptedLLM) Generate(_ context.Context, _ []llm.Message, _ float64, _ int, _ time.Duration) (string, error) {
	i := s.calls
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.replies[i], nil
}
func (s *scriptedLLM) ModelName() string         { return "scripted" }
func (s *scriptedLLM) TokenStats() llm.TokenStats { return llm.TokenStats{} }
func (s *scriptedLLM) ResetTokenStats()           {}

// fakeShell models a tiny in-memory cwd/env so directory-persistence
// scenarios can be asserted without touching a real shell.
type fakeShell struct {
	cwd string
}

func (f *fakeShell) Execute(_ context.Context, command string, _ time.Duration) (shell.Result, error) {
	trimmed := strings.TrimSpace(command)
	switch {
	case strings.HasPrefix(trimmed, "cd "):
		f.cwd = strings.TrimSpace(strings.TrimPrefix(trimmed, "cd "))
		return shell.Result{Success: true, Stdout: ""}, nil
	case trimmed == "pwd":
		return shell.Result{Success: true, Stdout: f.cwd}, nil
	case trimmed == "echo hi":
		return shell.Result{Success: true, Stdout: "hi"}, nil
	default:
		return shell.Result{Success: true, Stdout: ""}, nil
	}
}

// silentUI auto-confirms everything and never raises an interaction.
type silentUI struct {
	warnings []string
	chosen   string
	chooseOK bool
}

func (u *silentUI) ConfirmYesNo(_ string, _ bool) bool { return true }
func (u *silentUI) Choose(_ string, _ []parser.Option, _ bool) (string, bool) {
	return u.chosen, u.chooseOK
}
func (u *silentUI) Warn(msg string) { u.warnings = append(u.warnings, msg) }
func (u *silentUI) Info(string)     {}

func newTestLoop(llmClient llm.Client, sh ShellExecutor, ui UI, mode RunMode) *Loop {
	oracle := safety.NewOracle(true)
	return New(llmClient, oracle, sh, ui, mode, Options{SystemPrompt: "you are an agent"})
}

func TestSimpleSuccessScenario(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"command":"echo hi"}`,
		`{"status":"success","summary":"done"}`,
	}}
	sh := &fakeShell{}
	ui := &silentUI{}
	loop := newTestLoop(client, sh, ui, RunMode{AgentModeType: ModeAuto})

	result := loop.Run(context.Background(), "print the word hi", false)

	if !result.Success || result.Summary != "done" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Steps) != 1 || result.Steps[0].Command != "echo hi" || !result.Steps[0].Success || result.Steps[0].Stdout != "hi" {
		t.Fatalf("unexpected steps: %+v", result.Steps)
	}
}

func TestDangerousRefusalScenario(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"command":"rm -rf /"}`,
		`{"status":"failed","summary":"blocked"}`,
	}}
	sh := &fakeShell{}
	ui := &silentUI{}
	loop := newTestLoop(client, sh, ui, RunMode{AgentModeType: ModeAuto})

	result := loop.Run(context.Background(), "wipe root", false)

	if len(result.Steps) != 0 {
		t.Fatalf("expected no step record for a dangerous command, got %+v", result.Steps)
	}
	if result.Success {
		t.Fatalf("expected failure, got %+v", result)
	}
}

func TestDirectoryPersistenceScenario(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"command":"cd /tmp"}`,
		`{"command":"pwd"}`,
		`{"status":"success","summary":"ok"}`,
	}}
	sh := &fakeShell{cwd: "/home/user"}
	ui := &silentUI{}
	loop := newTestLoop(client, sh, ui, RunMode{AgentModeType: ModeAuto})

	result := loop.Run(context.Background(), "go to tmp", false)

	if len(result.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %+v", result.Steps)
	}
	if result.Steps[1].Stdout != "/tmp" {
		t.Fatalf("expected pwd to report /tmp, got %q", result.Steps[1].Stdout)
	}
	if sh.cwd != "/tmp" {
		t.Fatalf("expected shell cwd to persist as /tmp, got %q", sh.cwd)
	}
}

func TestIdleCapOnEmptyResponses(t *testing.T) {
	client := &scriptedLLM{
		replies: []string{"", "", "", ""},
		errs:    []error{llm.ErrEmptyResponse, llm.ErrEmptyResponse, llm.ErrEmptyResponse, llm.ErrEmptyResponse},
	}
	sh := &fakeShell{}
	ui := &silentUI{}
	loop := newTestLoop(client, sh, ui, RunMode{AgentModeType: ModeAuto})
	loop.opts.MaxIdleSteps = 2

	result := loop.Run(context.Background(), "do something", false)

	if result.Success {
		t.Fatalf("expected failure on idle cap, got %+v", result)
	}
	if client.calls != 2 {
		t.Fatalf("expected exactly 2 LLM calls before idle cap trips, got %d", client.calls)
	}
}

func TestInteractionRoundTripInteractiveMode(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"status":"interaction","message":"which dir?","options":[{"text":"/tmp"},{"text":"/var"}],"allow_custom_input":false}`,
		`{"status":"success","summary":"ok"}`,
	}}
	sh := &fakeShell{}
	ui := &silentUI{chosen: "/tmp", chooseOK: true}
	loop := newTestLoop(client, sh, ui, RunMode{AgentModeType: ModeInteractive, RequireConfirm: true})

	result := loop.Run(context.Background(), "pick a dir", false)

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	messages := loop.Conversation().Messages()
	found := false
	for _, m := range messages {
		if m.Role == llm.RoleUser && m.Content == "/tmp" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the chosen option to be appended as a user message, got %+v", messages)
	}
}

func TestAutoModeIgnoresInteraction(t *testing.T) {
	client := &scriptedLLM{replies: []string{
		`{"status":"interaction","message":"which dir?","options":[{"text":"/tmp"},{"text":"/var"}],"allow_custom_input":false}`,
		`{"status":"success","summary":"ok"}`,
	}}
	sh := &fakeShell{}
	ui := &silentUI{}
	loop := newTestLoop(client, sh, ui, RunMode{AgentModeType: ModeAuto})

	result := loop.Run(context.Background(), "pick a dir", false)

	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(ui.warnings) == 0 {
		t.Fatal("expected a warning to be surfaced for the ignored interaction")
	}
	for _, m := range loop.Conversation().Messages() {
		if m.Role == llm.RoleUser && (m.Content == "/tmp" || m.Content == "/var") {
			t.Fatalf("AUTO mode must not append a user message for an interaction, found %q", m.Content)
		}
	}
}

func TestNoTaskProvidedError(t *testing.T) {
	client := &scriptedLLM{replies: []string{`{"status":"success"}`}}
	sh := &fakeShell{}
	ui := &silentUI{}
	loop := newTestLoop(client, sh, ui, RunMode{AgentModeType: ModeAuto})

	result := loop.Run(context.Background(), "", false)
	if result.Error != "No task provided" {
		t.Fatalf("expected 'No task provided', got %+v", result)
	}
}
