// internal/tags/tags.go
package tags

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Tags are persisted in a single text column. New writes always produce a JSON
// array (the canonical encoding), but older rows may hold a plain
// comma-separated string, so Decode accepts both.

// Decode parses the stored tag field. It tries a JSON array first, then falls
// back to comma-splitting. Elements are trimmed and empties dropped. Decode
// never fails; unparseable input degrades to the comma fallback.
func Decode(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var arr []interface{}
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		out := make([]string, 0, len(arr))
		for _, v := range arr {
			s, ok := v.(string)
			if !ok {
				s = fmt.Sprint(v)
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Encode serializes a tag list to the canonical JSON array form.
func Encode(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		// A []string cannot fail to marshal.
		return "[]"
	}
	return string(b)
}
