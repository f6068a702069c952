// Package stub provides an in-memory RPCClient for testing.
package stub

import (
	"context"
	"errors"

	"solana-holder-sampler/internal/solana"
)

// ErrNotFound is returned when a mint has no supply entry in the stub store.
var ErrNotFound = errors.New("not found")

// RPCClient implements solana.RPCClient for testing.
type RPCClient struct {
	// Pages maps mint to its token account pages; page 1 is index 0.
	// Pages past the end return an empty slice.
	Pages map[string][][]solana.TokenAccount

	// Supplies maps mint to its supply metadata.
	Supplies map[string]*solana.TokenSupply

	// AccountsErr and SupplyErr force the corresponding call to fail.
	AccountsErr error
	SupplyErr   error

	// AccountCalls counts GetTokenAccounts invocations.
	AccountCalls int
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Pages:    make(map[string][][]solana.TokenAccount),
		Supplies: make(map[string]*solana.TokenSupply),
	}
}

// GetTokenAccounts retrieves one page of token accounts from the stub store.
func (c *RPCClient) GetTokenAccounts(_ context.Context, mint string, page int) ([]solana.TokenAccount, error) {
	c.AccountCalls++
	if c.AccountsErr != nil {
		return nil, c.AccountsErr
	}

	pages := c.Pages[mint]
	if page < 1 || page > len(pages) {
		return []solana.TokenAccount{}, nil
	}
	return pages[page-1], nil
}

// GetTokenSupply retrieves supply metadata from the stub store.
func (c *RPCClient) GetTokenSupply(_ context.Context, mint string) (*solana.TokenSupply, error) {
	if c.SupplyErr != nil {
		return nil, c.SupplyErr
	}

	supply, ok := c.Supplies[mint]
	if !ok {
		return nil, ErrNotFound
	}
	return supply, nil
}
