package safeclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Client reads transactions for one network's multisig transaction service.
// The all-transactions read path is unauthenticated.
type Client struct {
	baseURL string
	client  *http.Client
}

type transactionsPage struct {
	Results []map[string]any `json:"results"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AllTransactions fetches one page of a wallet's transactions, newest first.
func (c *Client) AllTransactions(ctx context.Context, safe string, limit, offset int) ([]map[string]any, error) {
	url := fmt.Sprintf("%s/api/v1/safes/%s/all-transactions/?limit=%d&offset=%d", c.baseURL, safe, limit, offset)

	status, body, err := doWithRetry(ctx, 3, 2*time.Second, func() (int, []byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return 0, nil, err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return 0, nil, err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		return resp.StatusCode, body, err
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("transaction service returned %d for %s", status, safe)
	}

	var page transactionsPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode transactions page: %w", err)
	}
	return page.Results, nil
}

// Registry resolves a network name to its transaction service client.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Register binds a network name to a service base URL.
func (r *Registry) Register(network, baseURL string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[network] = NewClient(baseURL)
}

// Transactions implements the reconciliation source over the registered
// networks.
func (r *Registry) Transactions(ctx context.Context, network, safe string, limit, offset int) ([]map[string]any, error) {
	r.mu.RLock()
	cli := r.clients[network]
	r.mu.RUnlock()
	if cli == nil {
		return nil, fmt.Errorf("no transaction service registered for network %q", network)
	}
	return cli.AllTransactions(ctx, safe, limit, offset)
}
