// Package agent implements the Agent Loop: the bounded, single-threaded
// reasoning cycle that drives an LLM through parsing, safety
// classification, confirmation, and shell execution to completion.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shellmind-ai/shellmind/internal/llm"
	"github.com/shellmind-ai/shellmind/internal/logging"
	"github.com/shellmind-ai/shellmind/internal/parser"
	"github.com/shellmind-ai/shellmind/internal/safety"
	"github.com/shellmind-ai/shellmind/internal/shell"
)

// UI is the presentation/interaction collaborator the loop calls out to.
// It combines confirmation prompts, interaction choices, and narration.
type UI interface {
	Asker
	// Choose presents options (or, if empty and allowCustomInput, a free
	// text prompt) and returns the user's reply and whether one was
	// given at all (false means the user cancelled, e.g. via Ctrl-D).
	Choose(message string, options []parser.Option, allowCustomInput bool) (string, bool)
	Warn(msg string)
	Info(msg string)
}

// StepRecord is one executed command and its outcome.
type StepRecord struct {
	Index   int
	Command string
	Success bool
	Stdout  string
	Stderr  string
}

// RunResult is returned at the end of every run, success or failure.
type RunResult struct {
	Success bool
	Steps   []StepRecord
	Summary string
	Error   string
}

// Options configures a Loop.
type Options struct {
	SystemPrompt string
	MaxSteps     int
	MaxIdleSteps int
	LLMTimeout   time.Duration
	ShellTimeout time.Duration
	Temperature  float64
}

// ShellExecutor is the subset of *shell.Shell the loop depends on, so
// tests can substitute a fake session without spawning real processes.
type ShellExecutor interface {
	Execute(ctx context.Context, command string, timeout time.Duration) (shell.Result, error)
}

// Loop orchestrates one run end to end. It is not safe for concurrent use;
// the scheduling model is deliberately single-threaded (see §5 of the
// design this follows).
type Loop struct {
	client llm.Client
	oracle *safety.Oracle
	sh     ShellExecutor
	ui     UI
	mode   RunMode
	opts   Options

	conv *Conversation
}

// New constructs a Loop ready to Run.
func New(client llm.Client, oracle *safety.Oracle, sh ShellExecutor, ui UI, mode RunMode, opts Options) *Loop {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = 10
	}
	if opts.MaxIdleSteps <= 0 {
		opts.MaxIdleSteps = 2
	}
	if opts.LLMTimeout <= 0 {
		opts.LLMTimeout = 120 * time.Second
	}
	if opts.ShellTimeout <= 0 {
		opts.ShellTimeout = 120 * time.Second
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.5
	}
	return &Loop{
		client: client,
		oracle: oracle,
		sh:     sh,
		ui:     ui,
		mode:   mode,
		opts:   opts,
		conv:   NewConversation(opts.SystemPrompt),
	}
}

// Conversation exposes the loop's conversation for outer collaborators
// (e.g. /export) that need to read it after a run.
func (l *Loop) Conversation() *Conversation { return l.conv }

// Run drives the Agent Loop until termination. Every run is tagged with a
// ulid-generated correlation id so its log lines can be grepped out of a
// shared log file (SPEC_FULL.md §9's LogToFile sink).
func (l *Loop) Run(ctx context.Context, task string, continueExecution bool) (result RunResult) {
	runID := newRunID()
	log := logging.Logger.With().Str("run_id", runID).Logger()
	log.Info().Str("task", task).Bool("continue", continueExecution).Msg("agent: run starting")
	defer func() {
		log.Info().Bool("success", result.Success).Str("error", result.Error).Int("steps", len(result.Steps)).Msg("agent: run finished")
	}()
	return l.run(ctx, task, continueExecution)
}

func (l *Loop) run(ctx context.Context, task string, continueExecution bool) RunResult {
	if !continueExecution {
		if task == "" {
			return RunResult{Success: false, Error: "No task provided"}
		}
		l.conv.Append(llm.RoleUser, formatUserTask(task))
	} else if task == "" && l.conv.Len() <= 1 {
		return RunResult{Success: false, Error: "No task provided"}
	}

	var steps []StepRecord
	idleSteps := 0
	currentStep := 0

	for {
		currentStep++
		if currentStep > l.opts.MaxSteps {
			return RunResult{Success: false, Steps: steps, Error: "Max steps reached"}
		}

		reply, err := l.client.Generate(ctx, l.conv.Messages(), l.opts.Temperature, 0, l.opts.LLMTimeout)
		if err != nil {
			idleSteps++
			l.ui.Warn(describeLLMFailure(err))
			if idleSteps >= l.opts.MaxIdleSteps {
				return RunResult{Success: false, Steps: steps, Summary: "连续多次收到空响应或调用失败"}
			}
			continue
		}

		l.conv.Append(llm.RoleAssistant, reply)
		intent := parser.Parse(reply)

		switch intent.Kind {
		case parser.KindInteraction:
			productive, result, done := l.handleInteraction(intent, steps)
			if done {
				return result
			}
			if productive {
				idleSteps = 0
			} else {
				idleSteps++
			}

		case parser.KindTerminal:
			l.ui.Info(intent.Summary)
			return RunResult{Success: intent.Success(), Steps: steps, Summary: intent.Summary}

		case parser.KindCommand:
			cls, reason := l.oracle.Classify(intent.Command)
			if cls == safety.Invalid || cls == safety.Dangerous {
				l.conv.Append(llm.RoleUser, formatInvalidCommand(reason))
				idleSteps++
				break
			}

			if !confirm(l.ui, cls, intent.Command, l.mode) {
				idleSteps = 0
				step := StepRecord{Index: len(steps) + 1, Command: intent.Command, Success: false, Stderr: "User cancelled command execution"}
				steps = append(steps, step)
				l.conv.Append(llm.RoleUser, formatObservation(intent.Command, false, "", step.Stderr))
				continue
			}

			idleSteps = 0
			result, execErr := l.sh.Execute(ctx, intent.Command, l.opts.ShellTimeout)
			if execErr != nil {
				result.Stderr = execErr.Error()
			}
			step := StepRecord{
				Index:   len(steps) + 1,
				Command: intent.Command,
				Success: result.Success,
				Stdout:  result.Stdout,
				Stderr:  result.Stderr,
			}
			steps = append(steps, step)
			l.conv.Append(llm.RoleUser, formatObservation(intent.Command, result.Success, result.Stdout, result.Stderr))

		case parser.KindUnparseable:
			idleSteps++

		default:
			idleSteps++
		}

		if idleSteps >= l.opts.MaxIdleSteps {
			return RunResult{Success: false, Steps: steps, Summary: fmt.Sprintf("连续 %d 步没有进展", idleSteps)}
		}
	}
}

// handleInteraction dispatches an Interaction intent per run mode. It
// returns (productive, result, done): done means the caller should return
// result immediately (run-scoped termination on cancellation); otherwise
// productive tells the caller whether to reset the idle counter (true) or
// count the iteration as idle (false).
func (l *Loop) handleInteraction(intent parser.Intent, steps []StepRecord) (bool, RunResult, bool) {
	if l.mode.AgentModeType == ModeAuto {
		l.ui.Warn("忽略交互请求（AUTO 模式）：" + intent.Message)
		return false, RunResult{}, false
	}

	reply, ok := l.ui.Choose(intent.Message, intent.Options, intent.AllowCustomInput)
	if !ok {
		return false, RunResult{Success: false, Steps: steps, Summary: "user cancelled interaction"}, true
	}
	l.conv.Append(llm.RoleUser, reply)
	return true, RunResult{}, false
}

// newRunID generates a per-run correlation id for log lines, grounded on
// the teacher's ulid-based id generation (go-opencode calls ulid.Make()
// for its session/message/part identifiers the same way).
func newRunID() string {
	return ulid.Make().String()
}

func describeLLMFailure(err error) string {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return "LLM 调用超时"
	case errors.Is(err, llm.ErrEmptyResponse):
		return "LLM 返回空响应"
	case errors.Is(err, llm.ErrTransport):
		return "LLM 调用失败：" + err.Error()
	default:
		return "LLM 调用失败：" + err.Error()
	}
}
