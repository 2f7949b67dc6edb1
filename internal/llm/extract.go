package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls the first balanced JSON object out of free text.
// Free-tier models wrap JSON in prose or markdown fences often enough that
// callers cannot rely on structured output alone; this is the second tier of
// the tolerant decode strategy (see FallbackDecoder).
//
// Returns the raw object and true on success, or nil and false when no
// parseable object is found.
func ExtractJSON(text string) (json.RawMessage, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		if end, ok := matchBrace(text, start); ok {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return nil, false
}

// matchBrace returns the index of the brace closing the object opened at
// start, tracking string literals and escapes.
func matchBrace(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
