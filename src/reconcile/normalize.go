package reconcile

import "strconv"

// Date fields in priority order for deriving the unified sort timestamp.
var dateFields = []string{"executionDate", "modified", "submissionDate"}

// Normalize rewrites a raw transaction document from the multisig transaction
// service into a storage-safe shape. The store cannot hold an array whose
// elements are themselves arrays, so any such array becomes an ordered map
// keyed by the stringified index. Everything else is preserved as-is,
// including key names and empty containers.
func Normalize(raw map[string]any) map[string]any {
	out, _ := normalizeValue(raw).(map[string]any)
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalizeValue(elem)
		}
		return out
	case []any:
		if isArrayOfArrays(val) {
			out := make(map[string]any, len(val))
			for i, elem := range val {
				out[strconv.Itoa(i)] = normalizeValue(elem)
			}
			return out
		}
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	default:
		return v
	}
}

// isArrayOfArrays reports whether every element of a non-empty array is
// itself an array.
func isArrayOfArrays(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	for _, elem := range arr {
		if _, ok := elem.([]any); !ok {
			return false
		}
	}
	return true
}

// UnifiedDate picks the single authoritative timestamp for a transaction:
// execution date wins over last-modified, which wins over submission date.
// Returns "" when none is present (the transaction then sorts first in feeds).
func UnifiedDate(tx map[string]any) string {
	for _, field := range dateFields {
		if s, ok := tx[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
