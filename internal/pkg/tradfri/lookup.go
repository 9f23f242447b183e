package tradfri

import (
	"encoding/json"
	"strconv"
	"strings"
)

// lookup walks a decoded json payload along a dotted path such as "3311.0.5850".
// Numeric segments index into arrays. Missing segments yield false, never a panic.
func lookup(raw any, path string) (any, bool) {
	current := raw
	for _, key := range strings.Split(path, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[key]
			if !ok {
				return nil, false
			}
			current = value
		case []any:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, current != nil
}

func lookupString(raw any, path string) string {
	value, ok := lookup(raw, path)
	if !ok {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	}
	return ""
}

func lookupInt(raw any, path string) (int, bool) {
	value, ok := lookup(raw, path)
	if !ok {
		return 0, false
	}
	return toInt(value)
}

func lookupIntPtr(raw any, path string) *int {
	v, ok := lookupInt(raw, path)
	if !ok {
		return nil
	}
	return &v
}

func toInt(value any) (int, bool) {
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		i, err := v.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(v))
		return i, err == nil
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func lookupIntSlice(raw any, path string) []int {
	out := []int{}
	value, ok := lookup(raw, path)
	if !ok {
		return out
	}
	items, ok := value.([]any)
	if !ok {
		return out
	}
	for _, item := range items {
		if i, ok := toInt(item); ok {
			out = append(out, i)
		}
	}
	return out
}
