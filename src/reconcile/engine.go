package reconcile

import (
	"context"
	"fmt"
	"log"
)

// InterfaceTag marks transactions reconciled by this service, as opposed to
// ones ingested directly through the HTTP API.
const InterfaceTag = "safesync"

// Identity keys in lookup priority order. A transaction carries safeTxHash
// before execution and txHash/transactionHash after; exactly one of them
// identifies it within a wallet.
var identityKeys = []string{"safeTxHash", "txHash", "transactionHash"}

// Bookkeeping keys owned by the store. They never enter a document through
// an upsert: a client pushing {"teamId": ...} must not reassign a document
// to another team.
var reservedKeys = []string{"_id", "teamId"}

// Source is the external multisig transaction service, read-only.
type Source interface {
	Transactions(ctx context.Context, network, safe string, limit, offset int) ([]map[string]any, error)
}

// Store is the document store the engine reconciles into.
type Store interface {
	FindTransaction(ctx context.Context, teamID int64, key, value string) (map[string]any, error)
	InsertTransaction(ctx context.Context, teamID int64, tx map[string]any) error
	MergeTransaction(ctx context.Context, teamID int64, key, value string, tx map[string]any) error
}

// RegisteredSafe is one wallet to reconcile in a cycle.
type RegisteredSafe struct {
	TeamID  int64
	Network string
	Address string
}

// Config tunes the engine's pagination behavior.
type Config struct {
	PageSize int // transactions fetched per page
	MaxPages int // hard cap on pages per safe per cycle
	// Notify, when set, is called after each page that produced writes so
	// feed consumers can refetch.
	Notify func(teamID int64, safe string)
}

// Engine pulls transactions from the external service and merges them into
// the document store without duplicating records or losing local metadata.
type Engine struct {
	source   Source
	store    Store
	detector *Detector
	cfg      Config
}

func NewEngine(source Source, store Store, cfg Config) *Engine {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 200
	}
	return &Engine{source: source, store: store, detector: NewDetector(), cfg: cfg}
}

// Run reconciles every registered safe in order. Safes are processed
// sequentially to avoid bursting the rate-limited external service, and a
// failure on one safe never aborts the others; the next cycle retries.
func (e *Engine) Run(ctx context.Context, safes []RegisteredSafe) {
	for _, s := range safes {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if err := e.ReconcileSafe(ctx, s.TeamID, s.Network, s.Address); err != nil {
			log.Printf("reconcile: safe %s on %s: %v", s.Address, s.Network, err)
		}
	}
}

// ReconcileSafe fetches pages of transactions for one wallet until a page
// comes back empty or produces no writes. A page full of already-known
// transactions means the store has caught up with the service's history.
func (e *Engine) ReconcileSafe(ctx context.Context, teamID int64, network, safe string) error {
	offset := 0
	for page := 0; page < e.cfg.MaxPages; page++ {
		txs, err := e.source.Transactions(ctx, network, safe, e.cfg.PageSize, offset)
		if err != nil {
			return fmt.Errorf("fetch offset %d: %w", offset, err)
		}
		if len(txs) == 0 {
			return nil
		}

		writes := 0
		for _, raw := range txs {
			raw["network"] = network
			raw["safe"] = safe
			raw["interface"] = InterfaceTag

			wrote, err := e.Upsert(ctx, teamID, raw)
			if err != nil {
				return fmt.Errorf("upsert offset %d: %w", offset, err)
			}
			if wrote {
				writes++
			}
		}

		if writes == 0 {
			return nil
		}
		if e.cfg.Notify != nil {
			e.cfg.Notify(teamID, safe)
		}
		offset += e.cfg.PageSize
	}

	log.Printf("reconcile: safe %s on %s: page cap %d reached, resuming next cycle", safe, network, e.cfg.MaxPages)
	return nil
}

// Upsert normalizes one raw transaction and writes it to the store if it is
// new or differs from the stored copy. Reports whether a write happened.
func (e *Engine) Upsert(ctx context.Context, teamID int64, raw map[string]any) (bool, error) {
	tx := Normalize(raw)
	for _, k := range reservedKeys {
		delete(tx, k)
	}
	if d := UnifiedDate(tx); d != "" {
		tx["unifiedDate"] = d
	}

	key, value := identity(tx)
	if key == "" {
		log.Printf("reconcile: skipping transaction without identity hash (safe %v)", tx["safe"])
		return false, nil
	}

	stored, err := e.store.FindTransaction(ctx, teamID, key, value)
	if err != nil {
		return false, err
	}
	if stored == nil {
		return true, e.store.InsertTransaction(ctx, teamID, tx)
	}
	if !e.detector.HasChanged(stored, tx) {
		return false, nil
	}
	return true, e.store.MergeTransaction(ctx, teamID, key, value, tx)
}

func identity(tx map[string]any) (key, value string) {
	for _, k := range identityKeys {
		if v, ok := tx[k].(string); ok && v != "" {
			return k, v
		}
	}
	return "", ""
}
