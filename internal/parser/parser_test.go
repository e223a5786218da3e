package parser

import (
	"reflect"
	"testing"
)

func TestParseCommandBareObject(t *testing.T) {
	intent := Parse(`{"thought":"list files","command":"ls -la"}`)
	if intent.Kind != KindCommand {
		t.Fatalf("expected KindCommand, got %v", intent.Kind)
	}
	if intent.Command != "ls -la" || intent.Thought != "list files" {
		t.Fatalf("unexpected fields: %+v", intent)
	}
}

func TestParseCommandWithPaddingProse(t *testing.T) {
	raw := "Sure, I'll do that.\n" + `{"command":"echo hi"}` + "\nRunning now."
	intent := Parse(raw)
	if intent.Kind != KindCommand || intent.Command != "echo hi" {
		t.Fatalf("unexpected parse result: %+v", intent)
	}
}

func TestParseFencedBeatsLaterBareObject(t *testing.T) {
	raw := "```json\n{\"command\":\"from-fence\"}\n```\nAlso consider {\"command\":\"from-bare\"}"
	intent := Parse(raw)
	if intent.Command != "from-fence" {
		t.Fatalf("expected fenced block to win, got %q", intent.Command)
	}
}

func TestParseInteraction(t *testing.T) {
	raw := `{"status":"interaction","message":"which dir?","options":[{"text":"/tmp"},{"text":"/var"}],"allow_custom_input":false}`
	intent := Parse(raw)
	if intent.Kind != KindInteraction {
		t.Fatalf("expected KindInteraction, got %v", intent.Kind)
	}
	if len(intent.Options) != 2 || intent.Options[0].Text != "/tmp" {
		t.Fatalf("unexpected options: %+v", intent.Options)
	}
}

func TestParseInteractionBeatsNestedCommand(t *testing.T) {
	raw := `{"status":"interaction","message":"confirm?","command":"rm -rf /"}`
	intent := Parse(raw)
	if intent.Kind != KindInteraction {
		t.Fatalf("interaction must win over a nested command field, got %v", intent.Kind)
	}
}

func TestParseTerminal(t *testing.T) {
	intent := Parse(`{"status":"success","summary":"all done"}`)
	if intent.Kind != KindTerminal || !intent.Success() || intent.Summary != "all done" {
		t.Fatalf("unexpected terminal parse: %+v", intent)
	}
}

func TestParseMalformedJSONNeverPartiallyBinds(t *testing.T) {
	intent := Parse(`{"command": "ls, "thought": broken}`)
	if intent.Kind != KindUnparseable {
		t.Fatalf("expected KindUnparseable for malformed JSON, got %v with command %q", intent.Kind, intent.Command)
	}
}

func TestParseKeywordFallback(t *testing.T) {
	intent := Parse("任务已完成，一切正常。")
	if intent.Kind != KindTerminal || !intent.Success() {
		t.Fatalf("expected implicit terminal success from keyword fallback, got %+v", intent)
	}
}

func TestParseUnparseableWithoutKeyword(t *testing.T) {
	intent := Parse("I am thinking about what to do next.")
	if intent.Kind != KindUnparseable {
		t.Fatalf("expected KindUnparseable, got %v", intent.Kind)
	}
}

func TestParseDeterministicAndIdempotent(t *testing.T) {
	raw := `{"command":"pwd"}`
	first := Parse(raw)
	second := Parse(raw)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("Parse must be deterministic: %+v vs %+v", first, second)
	}
}

func TestParseSkipsUnrecognizedObjectForLaterOne(t *testing.T) {
	raw := `{"foo":"bar"} then {"command":"ls"}`
	intent := Parse(raw)
	if intent.Kind != KindCommand || intent.Command != "ls" {
		t.Fatalf("expected scan to continue past unrecognized object, got %+v", intent)
	}
}
