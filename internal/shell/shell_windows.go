//go:build windows

package shell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

func detectWindowsShell() string {
	if comspec := os.Getenv("COMSPEC"); comspec != "" {
		return comspec
	}
	return "cmd.exe"
}

// RawTerminal runs fn unmodified. There is no raw-mode terminal support
// wired for Windows in this implementation (see executePlatform's pty
// fallback note); this stub keeps the UI collaborator's single-keystroke
// option selector portable across both platforms.
func RawTerminal(fn func() error) error {
	return fn()
}

// executePlatform runs command as a batch fragment. There is no pty on
// Windows in this implementation; output is captured rather than mirrored
// live, matching the original PowerShell/batch fallback path.
func (s *Shell) executePlatform(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	script := s.buildWindowsScript(command)

	scriptFile, err := os.CreateTemp("", "minishellagent_cmd_*.bat")
	if err != nil {
		return Result{}, fmt.Errorf("shell: create script: %w", err)
	}
	defer os.Remove(scriptFile.Name())
	if _, err := scriptFile.WriteString(script); err != nil {
		scriptFile.Close()
		return Result{}, fmt.Errorf("shell: write script: %w", err)
	}
	scriptFile.Close()

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, s.shellPath, "/c", scriptFile.Name())
	cmd.Dir = s.cwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	waitErr := cmd.Run()
	timedOut := runCtx.Err() == context.DeadlineExceeded

	if cwd, ok := readCwdSidecar(s.cwdFile); ok {
		s.cwd = cwd
	}
	exitCode := readExitCodeSidecar(s.exitCodeFile)
	_ = os.Remove(s.exitCodeFile)
	if timedOut {
		exitCode = -1
	} else if exitCode == -1 && waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}

	if timedOut {
		return Result{Success: false, Stderr: "Timeout", ExitCode: exitCode, TimedOut: true}, nil
	}

	return Result{
		Success:  exitCode == 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		TimedOut: timedOut,
	}, nil
}
