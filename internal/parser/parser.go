package parser

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")

// terminationKeywords trigger an implicit Terminal-success when no JSON
// object of a recognized shape could be extracted. Kept narrow and gated
// strictly behind that path so it never short-circuits a well-formed intent.
var terminationKeywords = []string{"完成", "完结", "finished", "done", "总结", "summary"}

type rawObject struct {
	Status           *string  `json:"status"`
	Command          *string  `json:"command"`
	Thought          *string  `json:"thought"`
	Message          *string  `json:"message"`
	Summary          *string  `json:"summary"`
	Options          []Option `json:"options"`
	AllowCustomInput *bool    `json:"allow_custom_input"`
}

// Parse extracts a single Intent from raw assistant text, per the
// extraction order: fenced ```json block first, then a brace-depth scan
// over the raw text, then (only if no object of a recognized shape was
// found) a keyword fallback.
func Parse(raw string) Intent {
	if m := fencedJSONPattern.FindStringSubmatch(raw); m != nil {
		if obj, ok := decode(m[1]); ok {
			if intent, ok := classify(obj, raw); ok {
				return intent
			}
		}
	}

	for _, candidate := range braceCandidates(raw) {
		obj, ok := decode(candidate)
		if !ok {
			continue
		}
		if intent, ok := classify(obj, raw); ok {
			return intent
		}
	}

	if containsTerminationKeyword(raw) {
		return Intent{Kind: KindTerminal, Status: "success", Summary: raw}
	}
	return Intent{Kind: KindUnparseable}
}

func decode(s string) (rawObject, bool) {
	var obj rawObject
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return rawObject{}, false
	}
	return obj, true
}

// classify turns a decoded JSON object into an Intent, or reports false if
// the object matches none of the three recognized shapes (so the caller
// keeps scanning rather than returning a meaningless intent).
func classify(obj rawObject, raw string) (Intent, bool) {
	if obj.Status != nil && *obj.Status == "interaction" {
		message := raw
		if obj.Message != nil {
			message = *obj.Message
		}
		allow := false
		if obj.AllowCustomInput != nil {
			allow = *obj.AllowCustomInput
		}
		return Intent{
			Kind:             KindInteraction,
			Message:          message,
			Options:          obj.Options,
			AllowCustomInput: allow,
		}, true
	}
	if obj.Status != nil && (*obj.Status == "success" || *obj.Status == "failed") {
		summary := ""
		if obj.Summary != nil {
			summary = *obj.Summary
		}
		return Intent{Kind: KindTerminal, Status: *obj.Status, Summary: summary}, true
	}
	if obj.Command != nil {
		thought := ""
		if obj.Thought != nil {
			thought = *obj.Thought
		}
		return Intent{Kind: KindCommand, Thought: thought, Command: *obj.Command}, true
	}
	return Intent{}, false
}

// braceCandidates yields every balanced substring of raw that starts at a
// '{', tracking string/escape state so braces inside string literals never
// affect depth. It restarts the scan just past each opening brace, whether
// or not that brace balanced, so a failed, unbalanced or unrecognized
// object doesn't hide a later valid one.
func braceCandidates(raw string) []string {
	var candidates []string
	searchFrom := 0
	for {
		start := strings.IndexByte(raw[searchFrom:], '{')
		if start == -1 {
			return candidates
		}
		start += searchFrom

		depth := 0
		inString := false
		escapeNext := false
		end := -1
		for i := start; i < len(raw); i++ {
			c := raw[i]
			if escapeNext {
				escapeNext = false
				continue
			}
			if c == '\\' {
				escapeNext = true
				continue
			}
			if c == '"' {
				inString = !inString
				continue
			}
			if inString {
				continue
			}
			switch c {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					end = i
				}
			}
			if end != -1 {
				break
			}
		}

		if end != -1 {
			candidates = append(candidates, raw[start:end+1])
		}
		searchFrom = start + 1
	}
}

func containsTerminationKeyword(raw string) bool {
	lower := strings.ToLower(raw)
	for _, kw := range terminationKeywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
