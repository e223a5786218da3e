package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// writeInitialState seeds the state file with a no-op script so the very
// first Execute has something to source. The cwd sidecar is first written
// by that Execute.
func (s *Shell) writeInitialState() error {
	if runtime.GOOS == "windows" {
		return os.WriteFile(s.stateFile, []byte("@echo off\r\n"), 0o600)
	}
	return os.WriteFile(s.stateFile, []byte("# shellmind persistent shell state\n"), 0o600)
}

// buildUnixScript wraps command so that it runs after the user's rc file
// (~/.zshrc for zsh, ~/.bashrc for bash) and the state file are sourced,
// and so that, after it runs, the new cwd and exit code are captured to
// sidecar files and the shell's exported environment is persisted back
// into the state file for the next command.
func (s *Shell) buildUnixScript(command string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "#!/bin/sh\n")
	rcName := map[string]string{"zsh": ".zshrc", "bash": ".bashrc"}[filepath.Base(s.shellPath)]
	if home, err := os.UserHomeDir(); err == nil && rcName != "" {
		rc := filepath.Join(home, rcName)
		fmt.Fprintf(&b, "[ -f %q ] && . %q >/dev/null 2>&1\n", rc, rc)
	}
	fmt.Fprintf(&b, "[ -f %q ] && . %q\n", s.stateFile, s.stateFile)
	fmt.Fprintf(&b, "%s\n", command)
	fmt.Fprintf(&b, "__shellmind_status=$?\n")
	fmt.Fprintf(&b, "pwd > %q\n", s.cwdFile)
	fmt.Fprintf(&b, "echo $__shellmind_status > %q\n", s.exitCodeFile)
	fmt.Fprintf(&b, "export -p > %q 2>/dev/null\n", s.stateFile)
	fmt.Fprintf(&b, "exit $__shellmind_status\n")
	return b.String()
}

// buildWindowsScript is the batch-file analogue of buildUnixScript.
func (s *Shell) buildWindowsScript(command string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@echo off\r\n")
	fmt.Fprintf(&b, "if exist %q call %q\r\n", s.stateFile, s.stateFile)
	fmt.Fprintf(&b, "cd /d %q\r\n", s.cwd)
	fmt.Fprintf(&b, "%s\r\n", command)
	fmt.Fprintf(&b, "set __shellmind_status=%%ERRORLEVEL%%\r\n")
	fmt.Fprintf(&b, "cd > %q\r\n", s.cwdFile)
	fmt.Fprintf(&b, "echo %%__shellmind_status%% > %q\r\n", s.exitCodeFile)
	fmt.Fprintf(&b, "exit /b %%__shellmind_status%%\r\n")
	return b.String()
}

// readCwdSidecar returns the captured working directory, if any.
func readCwdSidecar(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	cwd := strings.TrimSpace(string(data))
	if cwd == "" {
		return "", false
	}
	return cwd, true
}

// readExitCodeSidecar returns the captured exit code, defaulting to -1 when
// the sidecar is missing or unparsable (command likely killed by timeout).
func readExitCodeSidecar(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return -1
	}
	code, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return -1
	}
	return code
}
