package holders

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"solana-holder-sampler/internal/errs"
	"solana-holder-sampler/internal/solana"
)

// Resolver looks up a mint's fixed-point scale. The value is a pure
// conversion constant, fetched once per request.
type Resolver struct {
	rpc    solana.RPCClient
	logger *zap.Logger
}

// NewResolver creates a new decimals resolver.
func NewResolver(rpc solana.RPCClient, logger *zap.Logger) *Resolver {
	return &Resolver{rpc: rpc, logger: logger}
}

// Decimals resolves the number of fractional digits for a mint.
func (r *Resolver) Decimals(ctx context.Context, mint string) (uint8, error) {
	supply, err := r.rpc.GetTokenSupply(ctx, mint)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return 0, err
		}
		r.logger.Warn("token supply lookup failed",
			zap.String("mint", mint),
			zap.Error(err))
		return 0, errs.DecimalsUnavailable(err)
	}

	return supply.Decimals, nil
}
