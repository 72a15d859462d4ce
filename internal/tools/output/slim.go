package output

import (
	"strconv"
	"strings"
)

// Lookup retrieves the value at path inside obj. Paths use dot notation with
// optional element indexes, e.g. "customer.email" or "descriptions[0].title".
// Missing keys, out of range indexes and type mismatches yield nil.
func Lookup(obj map[string]any, path string) any {
	if obj == nil || path == "" {
		return nil
	}

	var current any = obj
	for _, part := range strings.Split(path, ".") {
		name, index, hasIndex := splitIndex(part)

		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[name]

		if hasIndex {
			list, ok := current.([]any)
			if !ok || index < 0 || index >= len(list) {
				return nil
			}
			current = list[index]
		}

		if current == nil {
			return nil
		}
	}

	return current
}

// splitIndex parses "field[2]" into ("field", 2, true).
func splitIndex(part string) (string, int, bool) {
	open := strings.IndexByte(part, '[')
	if open < 0 || !strings.HasSuffix(part, "]") {
		return part, 0, false
	}
	index, err := strconv.Atoi(part[open+1 : len(part)-1])
	if err != nil {
		return part, 0, false
	}
	return part[:open], index, true
}

// Pick returns a map holding only keys of the object at path, or nil when
// path does not hold an object. Absent keys map to nil.
func Pick(obj map[string]any, path string, keys ...string) any {
	nested, ok := Lookup(obj, path).(map[string]any)
	if !ok {
		return nil
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		out[k] = nested[k]
	}
	return out
}

// Summarize projects every object of the array at path onto keys. A missing
// array yields an empty list.
func Summarize(obj map[string]any, path string, keys ...string) []any {
	list, _ := Lookup(obj, path).([]any)
	out := make([]any, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entry := make(map[string]any, len(keys))
		for _, k := range keys {
			entry[k] = m[k]
		}
		out = append(out, entry)
	}
	return out
}

// Count returns the length of the array at path, or zero.
func Count(obj map[string]any, path string) int {
	list, _ := Lookup(obj, path).([]any)
	return len(list)
}

// deepCopyMap creates a deep copy of a map.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = deepCopyValue(v)
	}

	return result
}

// deepCopyValue creates a deep copy of a value.
func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = deepCopyValue(item)
		}
		return result
	default:
		return v
	}
}

// EstimateSize estimates the JSON encoded size of a value in bytes.
func EstimateSize(v any) int64 {
	switch val := v.(type) {
	case nil:
		return 4 // "null"
	case bool:
		return 5
	case string:
		return int64(len(val) + 2)
	case float64, int64, int:
		return 10
	case map[string]any:
		var size int64 = 2
		for k, subVal := range val {
			size += int64(len(k)+3) + EstimateSize(subVal)
		}
		return size
	case []any:
		var size int64 = 2
		for _, item := range val {
			size += EstimateSize(item) + 1
		}
		return size
	default:
		return 10
	}
}
