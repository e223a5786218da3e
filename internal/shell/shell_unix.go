//go:build !windows

package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/shellmind-ai/shellmind/internal/logging"
)

func detectWindowsShell() string { return "" }

// executePlatform runs command inside a real pty so ANSI/color output from
// interactive-aware programs survives, mirroring it live to stdout while
// also capturing it for the Observation the Agent Loop records.
func (s *Shell) executePlatform(ctx context.Context, command string, timeout time.Duration) (Result, error) {
	script := s.buildUnixScript(command)

	scriptFile, err := os.CreateTemp("", "minishellagent_cmd_*.sh")
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

	cmd := exec.CommandContext(runCtx, s.shellPath, scriptFile.Name())
	cmd.Dir = s.cwd
	cmd.Env = os.Environ()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return Result{}, fmt.Errorf("shell: start pty: %w", err)
	}
	defer ptmx.Close()

	if err := pty.InheritSize(os.Stdin, ptmx); err != nil {
		logging.Logger.Debug().Err(err).Msg("shell: pty.InheritSize failed, continuing with default size")
	}

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)
	go func() {
		for range winch {
			_ = pty.InheritSize(os.Stdin, ptmx)
		}
	}()

	var captured bytes.Buffer
	copyDone := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.MultiWriter(os.Stdout, &captured), ptmx)
		close(copyDone)
	}()

	waitErr := cmd.Wait()
	select {
	case <-copyDone:
	case <-time.After(500 * time.Millisecond):
	}

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
		Stdout:   captured.String(),
		Stderr:   "",
		ExitCode: exitCode,
		TimedOut: timedOut,
	}, nil
}

// RawTerminal puts the controlling terminal into raw mode for the duration
// of fn, restoring it afterward. Used by the UI collaborator's interaction
// option selector to read an unbuffered single keystroke instead of
// requiring a full line plus Enter. When stdin isn't a terminal (e.g. a
// test harness piping input, or output redirected to a file) fn runs
// unmodified.
func RawTerminal(fn func() error) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fn()
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fn()
	}
	defer term.Restore(fd, old)
	return fn()
}
