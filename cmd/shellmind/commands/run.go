package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shellmind-ai/shellmind/internal/agent"
	"github.com/shellmind-ai/shellmind/internal/config"
	"github.com/shellmind-ai/shellmind/internal/llm"
	"github.com/shellmind-ai/shellmind/internal/prefs"
	"github.com/shellmind-ai/shellmind/internal/safety"
	"github.com/shellmind-ai/shellmind/internal/shell"
	"github.com/shellmind-ai/shellmind/internal/ui"
)

var (
	flagTask          string
	flagMode          string
	flagAgentModeType string
	flagProvider      string
	flagAPIKey        string
	flagBaseURL       string
	flagModel         string
	flagMaxSteps      int
	flagNoSafeMode    bool
	flagNoColor       bool
)

const systemPrompt = `你是一个可以操作计算机终端的智能助手。你需要理解用户的任务，
通过生成 shell 命令来逐步完成它。每次回复只使用以下三种 JSON 形式之一：
命令 {"thought": "...", "command": "..."}，
交互 {"status":"interaction","message":"...","options":[{"text":"..."}],"allow_custom_input":false}，
或终止 {"status":"success"|"failed","summary":"..."}。`

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the agent loop against a task",
	RunE:  runAgent,
}

func init() {
	runCmd.Flags().StringVarP(&flagTask, "task", "t", "", "the task to accomplish")
	runCmd.Flags().StringVar(&flagMode, "mode", "agent", "run mode: chat|agent|complete")
	runCmd.Flags().StringVar(&flagAgentModeType, "agent-mode-type", "", "interaction mode: auto|interactive (default: from preferences)")
	runCmd.Flags().StringVar(&flagProvider, "llm", "openai", "LLM backend: openai|claude|local")
	runCmd.Flags().StringVar(&flagAPIKey, "api-key", "", "API key override")
	runCmd.Flags().StringVar(&flagBaseURL, "base-url", "", "base URL override (required for --llm local unless a default applies)")
	runCmd.Flags().StringVar(&flagModel, "model", "", "model name override")
	runCmd.Flags().IntVar(&flagMaxSteps, "max-steps", 0, "override MAX_STEPS")
	runCmd.Flags().BoolVar(&flagNoSafeMode, "no-safe-mode", false, "disable the Safety Oracle's dangerous/high-risk gating")
	runCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
}

func runAgent(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	userPrefs := prefs.Load(cwd)

	applyFlagOverrides(cfg, &userPrefs)

	ctx := context.Background()
	client, err := buildClient(ctx, cfg)
	if err != nil {
		return err
	}

	oracle := safety.NewOracle(cfg.IsSafeMode())
	term := ui.New(flagNoColor)

	switch flagMode {
	case "chat":
		return runChatMode(ctx, client, term)
	case "complete":
		return runCompleteMode(ctx, client, cfg, term)
	default:
		return runAgentMode(ctx, client, oracle, term, cfg, userPrefs, cwd)
	}
}

func applyFlagOverrides(cfg *config.Config, userPrefs *prefs.Prefs) {
	if flagMaxSteps > 0 {
		cfg.MaxSteps = flagMaxSteps
	}
	if flagNoSafeMode {
		f := false
		cfg.SafeMode = &f
	}
	switch strings.ToLower(flagAgentModeType) {
	case "auto":
		userPrefs.AgentModeType = "auto"
	case "interactive":
		userPrefs.AgentModeType = "interactive"
	}
}

func buildClient(ctx context.Context, cfg *config.Config) (llm.Client, error) {
	registry := llm.NewRegistry()

	provCfg := cfg.Provider[flagProvider]
	apiKey := flagAPIKey
	if apiKey == "" {
		apiKey = provCfg.APIKey
	}
	baseURL := flagBaseURL
	if baseURL == "" {
		baseURL = provCfg.BaseURL
	}
	model := flagModel
	if model == "" {
		model = provCfg.Model
	}
	if model == "" {
		model = cfg.Model
	}

	var (
		client llm.Client
		err    error
	)
	switch flagProvider {
	case "local":
		client, err = llm.NewLocalClient(ctx, llm.LocalConfig{BaseURL: baseURL, Model: model})
	case "claude":
		client, err = llm.NewClaudeClient(ctx, llm.ClaudeConfig{APIKey: apiKey, BaseURL: baseURL, Model: model})
	default:
		client, err = llm.NewOpenAIClient(ctx, llm.OpenAIConfig{APIKey: apiKey, BaseURL: baseURL, Model: model})
	}
	if err != nil {
		return nil, fmt.Errorf("build %s client: %w", flagProvider, err)
	}

	registry.Register(flagProvider, llm.NewRetryingClient(client, 3))
	return registry.Default()
}

func runAgentMode(ctx context.Context, client llm.Client, oracle *safety.Oracle, term *ui.Terminal, cfg *config.Config, userPrefs prefs.Prefs, cwd string) error {
	sh, err := shell.New(shell.WithShellPath(cfg.Shell))
	if err != nil {
		return fmt.Errorf("start persistent shell: %w", err)
	}
	defer sh.Close()

	mode := agent.RunMode{
		AgentModeType:  agentModeTypeFrom(userPrefs.AgentModeType),
		RequireConfirm: userPrefs.RequireConfirm,
	}
	loop := agent.New(client, oracle, sh, term, mode, agent.Options{
		SystemPrompt: systemPrompt,
		MaxSteps:     cfg.MaxSteps,
		MaxIdleSteps: cfg.MaxIdleSteps,
		LLMTimeout:   time.Duration(cfg.LLMTimeoutSec) * time.Second,
		ShellTimeout: time.Duration(cfg.LLMTimeoutSec) * time.Second,
	})

	result := loop.Run(ctx, flagTask, false)

	if err := prefs.Save(cwd, userPrefs); err != nil {
		term.Warn(fmt.Sprintf("failed to save preferences: %v", err))
	}

	if !result.Success {
		if result.Error != "" {
			return fmt.Errorf("%s", result.Error)
		}
		return fmt.Errorf("task failed: %s", result.Summary)
	}
	term.Info(result.Summary)
	return nil
}

func agentModeTypeFrom(s string) agent.AgentModeType {
	if strings.ToLower(s) == "auto" {
		return agent.ModeAuto
	}
	return agent.ModeInteractive
}

// runChatMode is a plain single-turn question/answer exchange, with no
// shell execution — grounded in the original's /chat mode.
func runChatMode(ctx context.Context, client llm.Client, term *ui.Terminal) error {
	if flagTask == "" {
		return fmt.Errorf("chat mode requires --task")
	}
	reply, err := client.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "你是一个乐于助人的助手。"},
		{Role: llm.RoleUser, Content: flagTask},
	}, 0.7, 0, 60*time.Second)
	if err != nil {
		return err
	}
	term.Info(reply)
	return nil
}

// runCompleteMode asks the LLM for a single suggested command and prints
// the reply — grounded in the original's /complete mode. The suggestion is
// not executed.
func runCompleteMode(ctx context.Context, client llm.Client, cfg *config.Config, term *ui.Terminal) error {
	if flagTask == "" {
		return fmt.Errorf("complete mode requires --task")
	}
	reply, err := client.Generate(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: flagTask},
	}, 0.3, 0, time.Duration(cfg.LLMTimeoutSec)*time.Second)
	if err != nil {
		return err
	}
	term.Info(reply)
	return nil
}
