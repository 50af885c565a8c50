package ai

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// DecodeBody parses an upstream body. Non-JSON bodies become {"raw": text};
// an empty body becomes an empty object.
func DecodeBody(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]any{}
	}
	var data any
	if err := json.Unmarshal(trimmed, &data); err != nil {
		return map[string]any{"raw": string(body)}
	}
	return data
}

// ExtractReply returns the first non-empty reply text among
// choices[0].message.content, choices[0].text, reply and answer.
func ExtractReply(body []byte) (string, bool) {
	data, ok := DecodeBody(body).(map[string]any)
	if !ok {
		return "", false
	}
	var first map[string]any
	if choices, ok := data["choices"].([]any); ok && len(choices) > 0 {
		first, _ = choices[0].(map[string]any)
	}
	message, _ := first["message"].(map[string]any)

	for _, candidate := range []any{
		message["content"],
		first["text"],
		data["reply"],
		data["answer"],
	} {
		if text, ok := candidate.(string); ok && text != "" {
			return text, true
		}
	}
	return "", false
}

// Preview renders body as compact JSON cut to at most limit bytes.
func Preview(body []byte, limit int) string {
	var out string
	var buf bytes.Buffer
	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 {
		out = "{}"
	} else if err := json.Compact(&buf, trimmed); err == nil {
		out = buf.String()
	} else {
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		buf.Reset()
		_ = enc.Encode(map[string]string{"raw": string(body)})
		out = strings.TrimSuffix(buf.String(), "\n")
	}
	if limit <= 0 || len(out) <= limit {
		return out
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(out[cut]) {
		cut--
	}
	return out[:cut]
}
