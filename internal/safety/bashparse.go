package safety

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// LeadingCommand holds the parsed shape of the first simple command in a
// shell command line: its program name and the first non-flag argument
// (its "subcommand", e.g. "status" in "git status").
type LeadingCommand struct {
	Name       string
	Args       []string
	Subcommand string
}

// ParseLeadingCommand extracts the first call expression from command using
// a real bash-grammar parser rather than naive whitespace splitting, so
// quoted arguments and parameter expansions don't confuse callers that only
// care about the program name — used by agent.matchesAllowPattern to match
// allow-list patterns against the parsed program/subcommand rather than the
// raw command line.
func ParseLeadingCommand(command string) (LeadingCommand, bool) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash), syntax.KeepComments(false))
	prog, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		return LeadingCommand{}, false
	}

	var found LeadingCommand
	ok := false
	syntax.Walk(prog, func(node syntax.Node) bool {
		if ok {
			return false
		}
		call, isCall := node.(*syntax.CallExpr)
		if !isCall || len(call.Args) == 0 {
			return true
		}
		words := make([]string, 0, len(call.Args))
		for _, w := range call.Args {
			words = append(words, wordToString(w))
		}
		found = LeadingCommand{Name: words[0], Args: words[1:]}
		for _, a := range found.Args {
			if !strings.HasPrefix(a, "-") {
				found.Subcommand = a
				break
			}
		}
		ok = true
		return false
	})
	return found, ok
}

func wordToString(w *syntax.Word) string {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(p.Value)
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			for _, inner := range p.Parts {
				if lit, isLit := inner.(*syntax.Lit); isLit {
					sb.WriteString(lit.Value)
				}
			}
		case *syntax.ParamExp:
			sb.WriteString("$" + p.Param.Value)
		case *syntax.CmdSubst:
			sb.WriteString("$(...)")
		}
	}
	return sb.String()
}
