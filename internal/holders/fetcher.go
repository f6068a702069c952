// Package holders implements the holder-analysis pipeline: paginated
// account fetching, decimal resolution, and the filter/sample processor.
package holders

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"solana-holder-sampler/internal/errs"
	"solana-holder-sampler/internal/observability"
	"solana-holder-sampler/internal/solana"
)

// DefaultPageInterval is the pause between page fetches, respecting the
// upstream rate limit.
const DefaultPageInterval = 100 * time.Millisecond

// Fetcher retrieves all holder accounts for a mint, page by page.
type Fetcher struct {
	rpc     solana.RPCClient
	limiter *rate.Limiter
	logger  *zap.Logger
	metrics *observability.Metrics
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithPageInterval overrides the inter-page pause.
func WithPageInterval(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithMetrics attaches Prometheus metrics to the fetcher.
func WithMetrics(m *observability.Metrics) FetcherOption {
	return func(f *Fetcher) {
		f.metrics = m
	}
}

// NewFetcher creates a new account fetcher.
func NewFetcher(rpc solana.RPCClient, logger *zap.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		rpc:     rpc,
		limiter: rate.NewLimiter(rate.Every(DefaultPageInterval), 1),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll pages through the ledger index starting at page 1 and
// accumulates every holder account for the mint. An empty page ends
// pagination. A mint with zero accounts overall is an error, so a silent
// empty result can never be mistaken for success.
func (f *Fetcher) FetchAll(ctx context.Context, mint string) ([]solana.TokenAccount, error) {
	var all []solana.TokenAccount

	for page := 1; ; page++ {
		if err := f.limiter.Wait(ctx); err != nil {
			// Wait also fails when the pause cannot finish before the
			// context deadline, without ctx being done yet. Either way
			// the deadline is what stopped pagination.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if _, ok := ctx.Deadline(); ok {
				return nil, context.DeadlineExceeded
			}
			return nil, errs.SourceUnavailable(err)
		}

		accounts, err := f.rpc.GetTokenAccounts(ctx, mint, page)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return nil, err
			}
			f.logger.Warn("token account fetch failed",
				zap.String("mint", mint),
				zap.Int("page", page),
				zap.Error(err))
			return nil, errs.SourceUnavailable(err)
		}

		f.metrics.RecordPage()

		if len(accounts) == 0 {
			break
		}

		all = append(all, accounts...)
		f.logger.Debug("fetched token account page",
			zap.String("mint", mint),
			zap.Int("page", page),
			zap.Int("accounts", len(accounts)),
			zap.Int("total", len(all)))
	}

	if len(all) == 0 {
		return nil, errs.NoHolders()
	}

	return all, nil
}
