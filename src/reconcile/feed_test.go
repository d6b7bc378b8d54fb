package reconcile

import (
	"testing"
	"time"

	"github.com/satoshisafe/safesync/src/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeFeedInterleavesByTime(t *testing.T) {
	t1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)
	t3 := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	msgs := []docstore.Message{
		{UID: "alice", Type: docstore.MessageTypeText, Message: "first", CreatedAt: t1},
		{UID: "bob", Type: docstore.MessageTypeText, Message: "third", CreatedAt: t3},
	}
	txs := []map[string]any{
		{"safe": "0xA", "safeTxHash": "0x1", "unifiedDate": t2.Format(time.RFC3339)},
	}

	items := ComposeFeed(msgs, txs)

	require.Len(t, items, 3)
	assert.Equal(t, "message", items[0].Kind)
	assert.Equal(t, "first", items[0].Message.Message)
	assert.Equal(t, "transaction", items[1].Kind)
	assert.Equal(t, "message", items[2].Kind)
	assert.Equal(t, "third", items[2].Message.Message)

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Time.Before(items[i-1].Time), "feed must be non-decreasing by time")
	}
}

func TestComposeFeedTotality(t *testing.T) {
	now := time.Now().UTC()
	msgs := []docstore.Message{
		{UID: "alice", Message: "hi", CreatedAt: now},
		{UID: "satoshibot", Type: docstore.MessageTypeBot, Message: "hello", CreatedAt: now.Add(time.Second)},
	}
	txs := []map[string]any{
		{"safe": "0xA", "safeTxHash": "0x1", "nonce": float64(5), "isExecuted": true, "unifiedDate": now.Format(time.RFC3339)},
		{"safe": "0xA", "safeTxHash": "0x2", "nonce": float64(5), "isExecuted": false, "unifiedDate": now.Format(time.RFC3339)},
		{"safe": "0xA", "safeTxHash": "0x3", "nonce": float64(6), "isExecuted": false, "unifiedDate": now.Format(time.RFC3339)},
	}

	items := ComposeFeed(msgs, txs)
	// 2 messages + 3 transactions - 1 superseded
	assert.Len(t, items, 4)
}

func TestComposeFeedStableOnEqualTimestamps(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	msgs := []docstore.Message{
		{UID: "alice", Message: "a", CreatedAt: now},
		{UID: "alice", Message: "b", CreatedAt: now},
	}

	items := ComposeFeed(msgs, nil)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Message.Message)
	assert.Equal(t, "b", items[1].Message.Message)
}

func TestComposeFeedUndatedTransactionsSortFirst(t *testing.T) {
	now := time.Now().UTC()
	msgs := []docstore.Message{{UID: "alice", Message: "hi", CreatedAt: now}}
	txs := []map[string]any{{"safe": "0xA", "safeTxHash": "0x1"}}

	items := ComposeFeed(msgs, txs)
	require.Len(t, items, 2)
	assert.Equal(t, "transaction", items[0].Kind)
}
