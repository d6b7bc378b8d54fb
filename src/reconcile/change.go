package reconcile

// Detector decides whether an incoming transaction differs from its stored
// copy. Keys in Protected are written by other paths (e.g. locally attached
// intent metadata) and may exist only in the stored copy without counting as
// a difference; a merge write leaves them untouched.
type Detector struct {
	Protected map[string]bool
}

// NewDetector returns a Detector with the default protected key set.
func NewDetector() *Detector {
	return &Detector{Protected: map[string]bool{"satoshiData": true}}
}

// HasChanged reports whether a merge write is needed. A false positive only
// costs a redundant write; a false negative would silently drop an external
// update (such as a new confirmation), so comparison errs on the side of
// reporting change.
func (d *Detector) HasChanged(stored, incoming map[string]any) bool {
	for k, v := range incoming {
		sv, ok := stored[k]
		if !ok || !deepEqual(sv, v) {
			return true
		}
	}
	for k := range stored {
		if d.Protected[k] {
			continue
		}
		if _, ok := incoming[k]; !ok {
			return true
		}
	}
	return false
}

// deepEqual compares two decoded document values structurally. Stored values
// round-trip through BSON and incoming ones through JSON, so numeric types
// differ (int32/int64 vs float64); all numbers compare by value.
func deepEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if na, ok := asFloat(a); ok {
		nb, ok := asFloat(b)
		return ok && na == nb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			ev, ok := bv[k]
			if !ok || !deepEqual(v, ev) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i, v := range av {
			if !deepEqual(v, bv[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
