package nakodx

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractMessage pulls the best available human-readable message out of
// a payload of unknown shape. The first applicable rule wins:
//
//  1. top-level "message", with "[code]" appended when a code exists
//  2. result.messages: first entry's "problem", a joined fallback, or
//     the string itself
//  3. first failed entry in result.files: its "error", then "problem"
//  4. top-level "code" alone: "Command failed [code]"
//
// Returns false when no rule applies; callers supply a generic fallback.
func ExtractMessage(payload []byte) (string, bool) {
	var root map[string]any
	if err := json.Unmarshal(payload, &root); err != nil {
		return "", false
	}

	if msg, ok := stringField(root, "message"); ok {
		if code, ok := stringish(root["code"]); ok {
			return fmt.Sprintf("%s [%s]", msg, code), true
		}
		return msg, true
	}

	if result, ok := root["result"].(map[string]any); ok {
		if msg, ok := fromMessages(result["messages"]); ok {
			return msg, true
		}
		if msg, ok := fromFiles(result["files"]); ok {
			return msg, true
		}
	}

	if code, ok := stringish(root["code"]); ok {
		return fmt.Sprintf("Command failed [%s]", code), true
	}

	return "", false
}

// fromMessages handles the result.messages field, which is either an
// ordered sequence of message objects or a plain string.
func fromMessages(v any) (string, bool) {
	switch msgs := v.(type) {
	case []any:
		if len(msgs) == 0 {
			return "", false
		}
		for _, m := range msgs {
			if entry, ok := m.(map[string]any); ok {
				if p, ok := stringField(entry, "problem"); ok {
					return p, true
				}
			}
		}
		// No entry carries a problem field: join them all.
		parts := make([]string, 0, len(msgs))
		for _, m := range msgs {
			entry, ok := m.(map[string]any)
			if !ok {
				parts = append(parts, fmt.Sprint(m))
				continue
			}
			if p, ok := stringField(entry, "problem"); ok {
				parts = append(parts, p)
			} else if p, ok := stringField(entry, "message"); ok {
				parts = append(parts, p)
			} else {
				parts = append(parts, fmt.Sprint(entry))
			}
		}
		return strings.Join(parts, "; "), true
	case string:
		if s := strings.TrimSpace(msgs); s != "" {
			return s, true
		}
	}
	return "", false
}

// fromFiles scans result.files for the first entry that failed or
// carries an error, preferring its error field over its problem field.
func fromFiles(v any) (string, bool) {
	files, ok := v.([]any)
	if !ok {
		return "", false
	}
	for _, f := range files {
		entry, ok := f.(map[string]any)
		if !ok {
			continue
		}
		errMsg, hasErr := stringField(entry, "error")
		state, _ := stringField(entry, "state")
		if state != FileStateFailed && !hasErr {
			continue
		}
		if hasErr {
			return errMsg, true
		}
		if p, ok := stringField(entry, "problem"); ok {
			return p, true
		}
	}
	return "", false
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// stringish coerces a string or JSON number field to a string.
func stringish(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t)), true
		}
		return fmt.Sprint(t), true
	case json.Number:
		return t.String(), true
	}
	return "", false
}

// intish coerces a JSON number or numeric string to an int.
func intish(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n)
		}
	case string:
		var n int
		if _, err := fmt.Sscanf(t, "%d", &n); err == nil {
			return n
		}
	}
	return 0
}
