package solana

// PageLimit is the fixed page size for getTokenAccounts.
const PageLimit = 1000

// TokenAccount is one raw holder account as returned by getTokenAccounts.
// Amount is the raw integer balance as a string; it is scaled by the
// mint's decimals downstream.
type TokenAccount struct {
	Owner  string `json:"owner"`
	Amount string `json:"amount"`
}

// TokenSupply is the getTokenSupply result value for a mint.
type TokenSupply struct {
	Amount   string `json:"amount"`
	Decimals uint8  `json:"decimals"`
}
