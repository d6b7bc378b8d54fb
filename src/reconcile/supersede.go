package reconcile

// FilterSuperseded drops transactions that lost the race for their sequence
// number. Owners can propose competing transactions at the same nonce; once
// one of them executes, the others are permanently invalid and must leave
// actionable views (they stay in raw storage for audit). Transactions without
// a nonce, and every proposal at a nonce with no executed winner yet, pass
// through. Relative order within each wallet is preserved.
func FilterSuperseded(txs []map[string]any) []map[string]any {
	bySafe := make(map[string][]map[string]any)
	var order []string
	for _, tx := range txs {
		safe, _ := tx["safe"].(string)
		if _, seen := bySafe[safe]; !seen {
			order = append(order, safe)
		}
		bySafe[safe] = append(bySafe[safe], tx)
	}

	out := make([]map[string]any, 0, len(txs))
	for _, safe := range order {
		group := bySafe[safe]
		executed := make(map[int64]bool)
		for _, tx := range group {
			if nonce, ok := nonceOf(tx); ok && isExecuted(tx) {
				executed[nonce] = true
			}
		}
		for _, tx := range group {
			nonce, ok := nonceOf(tx)
			if !ok || !executed[nonce] || isExecuted(tx) {
				out = append(out, tx)
			}
		}
	}
	return out
}

func nonceOf(tx map[string]any) (int64, bool) {
	n, ok := asFloat(tx["nonce"])
	if !ok {
		return 0, false
	}
	return int64(n), true
}

func isExecuted(tx map[string]any) bool {
	b, _ := tx["isExecuted"].(bool)
	return b
}
