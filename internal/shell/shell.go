// Package shell implements the Persistent Shell: a long-lived shell session
// whose working directory and exported environment survive between
// successive command executions.
package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/shellmind-ai/shellmind/internal/logging"
)

// instanceCounter disambiguates multiple Shell instances created within the
// same process (and therefore sharing a pid), since sidecar paths are
// otherwise derived solely from the pid.
var instanceCounter int64

// Result is the outcome of one Execute call.
type Result struct {
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
	TimedOut bool
}

// Shell is a persistent, session-continuous shell. It is not safe for
// concurrent use; the Agent Loop is single-threaded so this is never an
// issue in practice.
type Shell struct {
	shellPath string
	cwd       string

	stateFile    string
	cwdFile      string
	exitCodeFile string
}

// Option configures a new Shell.
type Option func(*Shell)

// WithShellPath overrides shell autodetection.
func WithShellPath(path string) Option {
	return func(s *Shell) { s.shellPath = path }
}

// New constructs a Persistent Shell, writing its initial sidecar state.
func New(opts ...Option) (*Shell, error) {
	s := &Shell{}
	for _, opt := range opts {
		opt(s)
	}
	if s.shellPath == "" {
		s.shellPath = detectShell()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("shell: determine initial cwd: %w", err)
	}
	s.cwd = cwd

	id := atomic.AddInt64(&instanceCounter, 1)
	tag := fmt.Sprintf("%d_%d", os.Getpid(), id)
	ext := "sh"
	if runtime.GOOS == "windows" {
		ext = "bat"
	}
	s.stateFile = sidecarPath(fmt.Sprintf("minishellagent_shell_state_%s.%s", tag, ext))
	s.cwdFile = sidecarPath(fmt.Sprintf("minishellagent_shell_cwd_%s.txt", tag))
	s.exitCodeFile = sidecarPath(fmt.Sprintf("minishellagent_exit_code_%s.txt", tag))

	if err := s.writeInitialState(); err != nil {
		logging.Logger.Warn().Err(err).Msg("shell: failed to write initial sidecar state")
	}
	return s, nil
}

func sidecarPath(name string) string {
	return filepath.Join(os.TempDir(), name)
}

// Cwd returns the shell's current working directory as last observed.
func (s *Shell) Cwd() string { return s.cwd }

// Close removes the sidecar files. It is idempotent.
func (s *Shell) Close() error {
	var firstErr error
	for _, p := range []string{s.stateFile, s.cwdFile, s.exitCodeFile} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Execute runs command in the persistent session, honoring timeout.
func (s *Shell) Execute(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	return s.executePlatform(ctx, command, timeout)
}

func detectShell() string {
	if runtime.GOOS == "windows" {
		return detectWindowsShell()
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}
