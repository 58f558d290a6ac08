package llm

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// StripFences removes a surrounding markdown code fence from a model
// response, including an optional language tag after the opening fence.
// Responses without fences are returned trimmed but otherwise unchanged.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Language tag sits between the fence and the first newline.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		first := strings.TrimSpace(s[:i])
		if first == "json" || first == "" {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeJSON strips fences from a model response and unmarshals it into v.
// Malformed output is a hard failure for the stage that asked for JSON.
func DecodeJSON(response string, v any) error {
	cleaned := StripFences(response)
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		return eris.Wrap(err, "llm: response is not valid JSON")
	}
	return nil
}
