package llm

import (
	"encoding/json"
	"strings"
)

// ExtractJSON strips markdown code fences and surrounding prose from
// model output, returning the best JSON candidate. The input is
// returned as-is when no fenced or braced block validates, so callers
// still get a parse error with the raw text.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		inner := text
		if idx := strings.Index(inner, "\n"); idx != -1 {
			inner = inner[idx+1:]
		} else {
			inner = strings.TrimPrefix(inner, "```")
		}
		inner = strings.TrimPrefix(inner, "json")
		if idx := strings.LastIndex(inner, "```"); idx != -1 {
			inner = inner[:idx]
		}
		inner = strings.TrimSpace(inner)
		if json.Valid([]byte(inner)) {
			return inner
		}
	}

	// Models sometimes wrap the object in explanatory text.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate
		}
	}

	return text
}
