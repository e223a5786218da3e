// Package ui is the terminal presentation collaborator: command echo,
// confirmation prompts, and interaction option selection, colored via
// fatih/color and read via a buffered stdin reader.
package ui

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/shellmind-ai/shellmind/internal/parser"
	"github.com/shellmind-ai/shellmind/internal/shell"
)

// Terminal implements agent.UI against the real console.
type Terminal struct {
	in      *bufio.Reader
	out     *os.File
	noColor bool
}

// New constructs a Terminal UI. noColor disables ANSI output (mirrors the
// CLI's --no-color flag).
func New(noColor bool) *Terminal {
	color.NoColor = noColor
	return &Terminal{in: bufio.NewReader(os.Stdin), out: os.Stdout, noColor: noColor}
}

// readLine reads one newline-terminated line from stdin, trimming the
// trailing newline (and any carriage return). Mirrors bufio.Scanner's
// line-splitting behavior closely enough for this CLI's prompt/answer use.
func (t *Terminal) readLine() (string, bool) {
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimRight(line, "\r\n"), true
}

// Info prints a plain assistant-facing status line.
func (t *Terminal) Info(msg string) {
	fmt.Fprintf(t.out, "%s %s\n", color.New(color.FgGreen, color.Bold).Sprint("agent ›"), msg)
}

// Warn prints a yellow warning line.
func (t *Terminal) Warn(msg string) {
	fmt.Fprintln(os.Stderr, color.New(color.FgYellow).Sprintf("warning: %s", msg))
}

// Command echoes a command about to run.
func (t *Terminal) Command(cmd string) {
	fmt.Fprintf(t.out, "%s %s\n", color.New(color.FgCyan, color.Bold).Sprint("$"), cmd)
}

// ConfirmYesNo implements agent.Asker.
func (t *Terminal) ConfirmYesNo(prompt string, defaultYes bool) bool {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}
	fmt.Fprintf(t.out, "%s %s ", color.New(color.FgMagenta).Sprint(prompt), suffix)

	line, ok := t.readLine()
	if !ok {
		return defaultYes
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		return defaultYes
	}
	return answer == "y" || answer == "yes"
}

// Choose implements agent.UI's interaction presenter: numbered options if
// any were offered, else a free-text prompt when allowCustomInput is set.
func (t *Terminal) Choose(message string, options []parser.Option, allowCustomInput bool) (string, bool) {
	fmt.Fprintf(t.out, "%s\n", color.New(color.FgMagenta, color.Bold).Sprint(message))

	if len(options) == 0 {
		if !allowCustomInput {
			return "", false
		}
		fmt.Fprint(t.out, "> ")
		line, ok := t.readLine()
		if !ok {
			return "", false
		}
		return line, true
	}

	for i, opt := range options {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, opt.Text)
	}
	if allowCustomInput {
		fmt.Fprintf(t.out, "  %d) (自定义输入)\n", len(options)+1)
	}
	fmt.Fprint(t.out, "> ")

	choice, ok := t.readChoiceKey(len(options), allowCustomInput)
	if !ok || choice == "" {
		return "", false
	}
	if idx, err := strconv.Atoi(choice); err == nil && idx >= 1 && idx <= len(options) {
		return options[idx-1].Text, true
	}
	if allowCustomInput {
		return choice, true
	}
	return "", false
}

// readChoiceKey reads a numbered-option answer. When there are fewer than
// ten options, a bare digit selects one immediately without waiting for
// Enter, via shell.RawTerminal putting the terminal into raw mode for the
// single keystroke (a no-op when stdin isn't a terminal, e.g. a piped test
// harness, in which case this falls back to a normal buffered line read).
// Anything typed that isn't a recognized digit is treated as the start of a
// custom-input line when allowCustomInput is set.
func (t *Terminal) readChoiceKey(numOptions int, allowCustomInput bool) (string, bool) {
	fi, statErr := os.Stdin.Stat()
	notTerminal := statErr == nil && fi.Mode()&os.ModeCharDevice == 0
	if numOptions >= 10 || notTerminal {
		line, ok := t.readLine()
		if !ok {
			return "", false
		}
		return strings.TrimSpace(line), true
	}

	var key byte
	var readErr error
	rawErr := shell.RawTerminal(func() error {
		key, readErr = t.in.ReadByte()
		return readErr
	})
	if rawErr != nil {
		return "", false
	}
	if readErr != nil {
		line, ok := t.readLine()
		if !ok {
			return "", false
		}
		return strings.TrimSpace(line), true
	}

	if key >= '1' && key <= '9' && int(key-'0') <= numOptions {
		fmt.Fprintf(t.out, "%c\n", key)
		return string(key), true
	}

	if !allowCustomInput {
		fmt.Fprintln(t.out)
		return "", false
	}

	fmt.Fprintf(t.out, "%c", key)
	rest, ok := t.readLine()
	if !ok {
		return string(key), true
	}
	return string(key) + rest, true
}
