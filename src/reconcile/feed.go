package reconcile

import (
	"sort"
	"time"

	"github.com/satoshisafe/safesync/src/docstore"
)

// FeedItem is one entry of the combined chat/transaction timeline.
type FeedItem struct {
	Kind        string              `json:"kind"` // "message" | "transaction"
	Time        time.Time           `json:"time"`
	Message     *docstore.Message   `json:"message,omitempty"`
	Transaction map[string]any      `json:"transaction,omitempty"`
}

// ComposeFeed merges chat messages and reconciled transactions into a single
// feed ordered ascending by timestamp. Superseded transactions are filtered
// out first; nothing else is dropped or duplicated. The sort is stable so
// equal timestamps keep their input order.
func ComposeFeed(msgs []docstore.Message, txs []map[string]any) []FeedItem {
	kept := FilterSuperseded(txs)

	items := make([]FeedItem, 0, len(msgs)+len(kept))
	for i := range msgs {
		items = append(items, FeedItem{
			Kind:    "message",
			Time:    msgs[i].CreatedAt,
			Message: &msgs[i],
		})
	}
	for _, tx := range kept {
		items = append(items, FeedItem{
			Kind:        "transaction",
			Time:        txTime(tx),
			Transaction: tx,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Time.Before(items[j].Time)
	})
	return items
}

// txTime parses the unified date stamped at normalization time. Transactions
// without one (or with an unparseable one) sort to the beginning.
func txTime(tx map[string]any) time.Time {
	s, _ := tx["unifiedDate"].(string)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
