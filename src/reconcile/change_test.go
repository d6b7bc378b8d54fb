package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTx() map[string]any {
	return map[string]any{
		"safeTxHash": "0x1",
		"safe":       "0xA",
		"network":    "mainnet",
		"nonce":      float64(5),
		"isExecuted": false,
		"confirmations": []any{
			map[string]any{"owner": "0xaa"},
		},
		"confirmationsRequired": float64(2),
	}
}

func TestHasChangedReflexive(t *testing.T) {
	d := NewDetector()
	tx := sampleTx()
	assert.False(t, d.HasChanged(tx, tx))
}

func TestHasChangedSensitivity(t *testing.T) {
	d := NewDetector()
	stored := sampleTx()

	for key := range stored {
		incoming := sampleTx()
		incoming[key] = "altered"
		assert.True(t, d.HasChanged(stored, incoming), "altering %q must register as change", key)
	}

	// new confirmation arriving
	incoming := sampleTx()
	incoming["confirmations"] = []any{
		map[string]any{"owner": "0xaa"},
		map[string]any{"owner": "0xbb"},
	}
	assert.True(t, d.HasChanged(stored, incoming))

	// key missing from incoming
	incoming = sampleTx()
	delete(incoming, "nonce")
	assert.True(t, d.HasChanged(stored, incoming))
}

func TestHasChangedProtectedKeyExemption(t *testing.T) {
	d := NewDetector()
	stored := sampleTx()
	stored["satoshiData"] = map[string]any{"type": "send", "amount": "100"}

	incoming := sampleTx()
	assert.False(t, d.HasChanged(stored, incoming), "stored-only satoshiData must not trigger a write")

	// but an incoming satoshiData that differs still counts
	incoming["satoshiData"] = map[string]any{"type": "swap"}
	assert.True(t, d.HasChanged(stored, incoming))
}

func TestHasChangedNumericTypesCompareByValue(t *testing.T) {
	d := NewDetector()
	stored := sampleTx()
	stored["nonce"] = int64(5)
	stored["confirmationsRequired"] = int32(2)

	incoming := sampleTx()
	assert.False(t, d.HasChanged(stored, incoming), "BSON ints must equal JSON floats of the same value")

	incoming["nonce"] = float64(6)
	assert.True(t, d.HasChanged(stored, incoming))
}
