package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSource struct {
	pages map[string]map[int][]map[string]any // safe -> offset -> page
	calls int
	fail  map[string]bool
}

func (m *mockSource) Transactions(_ context.Context, _, safe string, _, offset int) ([]map[string]any, error) {
	m.calls++
	if m.fail[safe] {
		return nil, errors.New("service unavailable")
	}
	page := m.pages[safe][offset]
	out := make([]map[string]any, len(page))
	for i, tx := range page {
		out[i] = deepCopy(tx)
	}
	return out, nil
}

type mockStore struct {
	docs    map[string]map[string]any // identity value -> document
	inserts int
	merges  int
}

func newMockStore() *mockStore {
	return &mockStore{docs: make(map[string]map[string]any)}
}

func (m *mockStore) FindTransaction(_ context.Context, _ int64, _, value string) (map[string]any, error) {
	return m.docs[value], nil
}

func (m *mockStore) InsertTransaction(_ context.Context, _ int64, tx map[string]any) error {
	_, value := identity(tx)
	m.docs[value] = tx
	m.inserts++
	return nil
}

func (m *mockStore) MergeTransaction(_ context.Context, _ int64, _, value string, tx map[string]any) error {
	stored := m.docs[value]
	for k, v := range tx {
		stored[k] = v
	}
	m.merges++
	return nil
}

func deepCopy(tx map[string]any) map[string]any {
	out := make(map[string]any, len(tx))
	for k, v := range tx {
		switch val := v.(type) {
		case map[string]any:
			out[k] = deepCopy(val)
		case []any:
			arr := make([]any, len(val))
			for i, elem := range val {
				if m, ok := elem.(map[string]any); ok {
					arr[i] = deepCopy(m)
				} else {
					arr[i] = elem
				}
			}
			out[k] = arr
		default:
			out[k] = v
		}
	}
	return out
}

func servicePage(hashes ...string) []map[string]any {
	page := make([]map[string]any, 0, len(hashes))
	for i, h := range hashes {
		page = append(page, map[string]any{
			"safeTxHash":     h,
			"nonce":          float64(i),
			"isExecuted":     false,
			"submissionDate": "2024-01-01T10:00:00Z",
			"confirmations":  []any{map[string]any{"owner": "0xaa"}},
		})
	}
	return page
}

func TestReconcilePaginationTermination(t *testing.T) {
	// Page at offset 0 is all new; page at offset 5 matches what is by then
	// stored. The engine must fetch exactly twice and stop.
	firstPage := servicePage("0x1", "0x2", "0x3", "0x4", "0x5")
	source := &mockSource{pages: map[string]map[int][]map[string]any{
		"0xA": {0: firstPage, 5: firstPage},
	}}
	store := newMockStore()
	engine := NewEngine(source, store, Config{PageSize: 5})

	err := engine.ReconcileSafe(context.Background(), 1, "mainnet", "0xA")
	require.NoError(t, err)

	assert.Equal(t, 2, source.calls)
	assert.Equal(t, 5, store.inserts)
	assert.Equal(t, 0, store.merges)
}

func TestReconcileEmptyFirstPageIsNoop(t *testing.T) {
	source := &mockSource{pages: map[string]map[int][]map[string]any{"0xA": {}}}
	store := newMockStore()
	engine := NewEngine(source, store, Config{PageSize: 5})

	require.NoError(t, engine.ReconcileSafe(context.Background(), 1, "mainnet", "0xA"))
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, 0, store.inserts)
}

func TestReconcileTagsAndStampsTransactions(t *testing.T) {
	source := &mockSource{pages: map[string]map[int][]map[string]any{
		"0xA": {0: servicePage("0x1")},
	}}
	store := newMockStore()
	engine := NewEngine(source, store, Config{PageSize: 5})

	require.NoError(t, engine.ReconcileSafe(context.Background(), 1, "mainnet", "0xA"))

	stored := store.docs["0x1"]
	require.NotNil(t, stored)
	assert.Equal(t, "mainnet", stored["network"])
	assert.Equal(t, "0xA", stored["safe"])
	assert.Equal(t, InterfaceTag, stored["interface"])
	assert.Equal(t, "2024-01-01T10:00:00Z", stored["unifiedDate"])
}

func TestReconcileMaxPagesCap(t *testing.T) {
	// Every page returns a fresh transaction; the cap must stop the loop.
	pages := map[int][]map[string]any{}
	for offset := 0; offset < 100; offset++ {
		pages[offset] = servicePage("0x" + string(rune('a'+offset)))
	}
	source := &mockSource{pages: map[string]map[int][]map[string]any{"0xA": pages}}
	store := newMockStore()
	engine := NewEngine(source, store, Config{PageSize: 1, MaxPages: 3})

	require.NoError(t, engine.ReconcileSafe(context.Background(), 1, "mainnet", "0xA"))
	assert.Equal(t, 3, source.calls)
}

func TestRunIsolatesPerSafeFailures(t *testing.T) {
	source := &mockSource{
		pages: map[string]map[int][]map[string]any{
			"0xGOOD": {0: servicePage("0x1")},
		},
		fail: map[string]bool{"0xBAD": true},
	}
	store := newMockStore()
	engine := NewEngine(source, store, Config{PageSize: 5})

	engine.Run(context.Background(), []RegisteredSafe{
		{TeamID: 1, Network: "mainnet", Address: "0xBAD"},
		{TeamID: 1, Network: "mainnet", Address: "0xGOOD"},
	})

	assert.Equal(t, 1, store.inserts, "failure on one safe must not abort the others")
}

func TestUpsertStripsReservedBookkeepingKeys(t *testing.T) {
	store := newMockStore()
	engine := NewEngine(&mockSource{}, store, Config{})

	// A client-pushed transaction trying to smuggle store bookkeeping keys.
	tx := map[string]any{
		"safeTxHash": "0x1",
		"nonce":      float64(5),
		"teamId":     float64(999),
		"_id":        "deadbeef",
	}
	wrote, err := engine.Upsert(context.Background(), 1, tx)
	require.NoError(t, err)
	assert.True(t, wrote)

	stored := store.docs["0x1"]
	require.NotNil(t, stored)
	assert.NotContains(t, stored, "teamId")
	assert.NotContains(t, stored, "_id")

	// Replaying the same data with an injected teamId must not register as
	// a change, let alone reassign the document.
	again := map[string]any{
		"safeTxHash": "0x1",
		"nonce":      float64(5),
		"teamId":     float64(42),
	}
	wrote, err = engine.Upsert(context.Background(), 1, again)
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Equal(t, 0, store.merges)
}

func TestReconcileEndToEndMergeThenSupersede(t *testing.T) {
	// First cycle: a pending transaction is stored.
	pending := map[string]any{
		"safeTxHash":     "0x1",
		"nonce":          float64(5),
		"isExecuted":     false,
		"submissionDate": "2024-01-01T10:00:00Z",
		"confirmations":  []any{map[string]any{"owner": "0xaa"}},
	}
	source := &mockSource{pages: map[string]map[int][]map[string]any{
		"0xA": {0: {pending}},
	}}
	store := newMockStore()
	engine := NewEngine(source, store, Config{PageSize: 5})
	require.NoError(t, engine.ReconcileSafe(context.Background(), 1, "mainnet", "0xA"))
	require.Equal(t, 1, store.inserts)

	// The external service now reports it executed with a new confirmation.
	executed := deepCopy(pending)
	executed["isExecuted"] = true
	executed["executionDate"] = "2024-01-02T09:00:00Z"
	executed["confirmations"] = []any{
		map[string]any{"owner": "0xaa"},
		map[string]any{"owner": "0xbb"},
	}
	source.pages["0xA"] = map[int][]map[string]any{0: {executed}}

	require.NoError(t, engine.ReconcileSafe(context.Background(), 1, "mainnet", "0xA"))
	assert.Equal(t, 1, store.merges, "exactly one merge write expected")
	assert.Equal(t, 1, store.inserts, "no duplicate insert for a known transaction")

	stored := store.docs["0x1"]
	assert.Equal(t, true, stored["isExecuted"])
	assert.Equal(t, "2024-01-02T09:00:00Z", stored["unifiedDate"])

	// A competing proposal at the same nonce from another owner is now
	// permanently superseded.
	competing := map[string]any{
		"safe": "0xA", "safeTxHash": "0x2", "nonce": float64(5), "isExecuted": false,
	}
	kept := FilterSuperseded([]map[string]any{stored, competing})
	require.Len(t, kept, 1)
	assert.Equal(t, "0x1", kept[0]["safeTxHash"])
}
