package solana

import "context"

// RPCClient defines the ledger-index RPC interface used by holder analysis.
type RPCClient interface {
	// GetTokenAccounts retrieves one page of token accounts for a mint.
	// Pages start at 1; an empty page signals end of data.
	GetTokenAccounts(ctx context.Context, mint string, page int) ([]TokenAccount, error)

	// GetTokenSupply retrieves the supply metadata for a mint, including
	// the fixed-point scale (decimals).
	GetTokenSupply(ctx context.Context, mint string) (*TokenSupply, error)
}
