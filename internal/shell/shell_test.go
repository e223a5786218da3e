package shell

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testShell(t *testing.T) *Shell {
	t.Helper()
	return &Shell{
		shellPath:    "/bin/sh",
		cwd:          t.TempDir(),
		stateFile:    filepath.Join(t.TempDir(), "state.sh"),
		cwdFile:      filepath.Join(t.TempDir(), "cwd.txt"),
		exitCodeFile: filepath.Join(t.TempDir(), "exit.txt"),
	}
}

func TestBuildUnixScriptSourcesStateAndCapturesExit(t *testing.T) {
	s := testShell(t)
	script := s.buildUnixScript("echo hi")

	if !strings.Contains(script, "echo hi") {
		t.Fatalf("script must contain the command: %s", script)
	}
	if !strings.Contains(script, s.stateFile) {
		t.Fatalf("script must source the state file: %s", script)
	}
	if !strings.Contains(script, "pwd >") {
		t.Fatalf("script must capture pwd: %s", script)
	}
	if !strings.Contains(script, "exit $__shellmind_status") {
		t.Fatalf("script must propagate exit status: %s", script)
	}
}

func TestReadCwdSidecarMissingFile(t *testing.T) {
	if _, ok := readCwdSidecar(filepath.Join(t.TempDir(), "nope.txt")); ok {
		t.Fatal("expected ok=false for a missing sidecar")
	}
}

func TestReadCwdSidecarTrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cwd.txt")
	if err := os.WriteFile(path, []byte("/home/user/project\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cwd, ok := readCwdSidecar(path)
	if !ok || cwd != "/home/user/project" {
		t.Fatalf("got (%q, %v)", cwd, ok)
	}
}

func TestReadExitCodeSidecarDefaultsOnMissing(t *testing.T) {
	if code := readExitCodeSidecar(filepath.Join(t.TempDir(), "nope.txt")); code != -1 {
		t.Fatalf("expected -1 for missing sidecar, got %d", code)
	}
}

func TestReadExitCodeSidecarParsesValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exit.txt")
	if err := os.WriteFile(path, []byte("127\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if code := readExitCodeSidecar(path); code != 127 {
		t.Fatalf("expected 127, got %d", code)
	}
}

func TestNewAssignsDistinctSidecarPaths(t *testing.T) {
	s1, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer s1.Close()
	s2, err := New()
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	if s1.stateFile == s2.stateFile {
		t.Fatalf("expected distinct sidecar paths across instances in the same process, got %q twice", s1.stateFile)
	}
}
