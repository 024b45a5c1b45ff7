package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError indicates a model reply could not be decoded into a JSON object.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed model response (%s): %s", e.Reason, truncate(e.Raw, 200))
}

// codeFence matches a leading fence with optional language tag, or a trailing fence.
var codeFence = regexp.MustCompile("(?m)^```[a-zA-Z]*\\n|\\n```$")

// StripCodeFence removes markdown code-fence markers wrapping a model reply.
func StripCodeFence(text string) string {
	return codeFence.ReplaceAllString(strings.TrimSpace(text), "")
}

// ParseObject extracts a single JSON object from a model's free-form text
// reply. The reply may be wrapped in code fences and surrounded by
// whitespace. A decode failure, or a decoded value that is not an object,
// returns a *ParseError; callers at the absorption boundary convert that to
// an empty result.
func ParseObject(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(StripCodeFence(text))
	if cleaned == "" {
		return nil, &ParseError{Reason: "empty response", Raw: text}
	}

	var decoded any
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return nil, &ParseError{Reason: err.Error(), Raw: text}
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, &ParseError{Reason: "decoded value is not an object", Raw: text}
	}
	return obj, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
