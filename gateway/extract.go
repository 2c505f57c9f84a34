package gateway

import (
	"bytes"
	"encoding/json"
	"strings"
)

// decodeJSON parses raw as an untyped JSON value. ok is false for empty or non-JSON bodies.
func decodeJSON(raw []byte) (v any, ok bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// lookup walks a dotted path ("data.downloadUrl") through nested objects
func lookup(v any, path string) (any, bool) {
	cur := v
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[part]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// extract returns the first present field among paths, if any
func extract(v any, paths []string) (any, bool) {
	for _, p := range paths {
		if found, ok := lookup(v, p); ok {
			return found, true
		}
	}
	return nil, false
}

// missingFields lists required top-level fields that are absent, null or empty strings
func missingFields(payload any, required []string) []string {
	obj, _ := payload.(map[string]any)
	var missing []string
	for _, field := range required {
		val, ok := obj[field]
		if !ok || val == nil {
			missing = append(missing, field)
			continue
		}
		if s, isString := val.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}
