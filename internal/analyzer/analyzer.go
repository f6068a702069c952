// Package analyzer orchestrates one holder analysis request:
// validation → concurrent decimals/accounts fetch → processing.
package analyzer

import (
	"context"
	"errors"
	"time"

	"github.com/mr-tron/base58"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"solana-holder-sampler/internal/domain"
	"solana-holder-sampler/internal/errs"
	"solana-holder-sampler/internal/holders"
	"solana-holder-sampler/internal/observability"
	"solana-holder-sampler/internal/solana"
)

// mintLength is the byte length of a ledger public key.
const mintLength = 32

// Analyzer coordinates the analysis pipeline.
type Analyzer struct {
	fetcher   *holders.Fetcher
	resolver  *holders.Resolver
	processor *holders.Processor
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// Options for creating an Analyzer.
type Options struct {
	Fetcher   *holders.Fetcher
	Resolver  *holders.Resolver
	Processor *holders.Processor

	// Timeout is the overall per-request time budget. Zero means no
	// analyzer-imposed deadline.
	Timeout time.Duration

	Logger  *zap.Logger
	Metrics *observability.Metrics
}

// New creates a new Analyzer.
func New(opts Options) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		fetcher:   opts.Fetcher,
		resolver:  opts.Resolver,
		processor: opts.Processor,
		timeout:   opts.Timeout,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// Validate checks all analysis parameters. It fails fast on the first
// violation, before any network call.
func Validate(params domain.AnalysisParams) error {
	if params.MintAddress == "" {
		return errs.Validation("token mint address is required")
	}
	decoded, err := base58.Decode(params.MintAddress)
	if err != nil || len(decoded) != mintLength {
		return errs.Validation("invalid Solana token mint address format")
	}
	if params.MinHoldings < 0 {
		return errs.Validation("minimum holdings must be zero or positive")
	}
	if params.NumberOfHolders < 1 {
		return errs.Validation("number of holders must be at least 1")
	}
	if params.ExcludeTopPercent < 0 || params.ExcludeTopPercent >= 100 {
		return errs.Validation("exclude top percent must be at least 0 and below 100")
	}
	return nil
}

// Analyze runs one analysis request and returns the results together with
// the elapsed processing duration.
//
// The decimals lookup and the account pagination run concurrently; the
// processor starts only once both are available.
func (a *Analyzer) Analyze(ctx context.Context, params domain.AnalysisParams) (*domain.AnalysisResults, time.Duration, error) {
	start := time.Now()

	if err := Validate(params); err != nil {
		a.record(err, start)
		return nil, time.Since(start), err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	var (
		decimals uint8
		accounts []solana.TokenAccount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := a.resolver.Decimals(gctx, params.MintAddress)
		if err != nil {
			return err
		}
		decimals = d
		return nil
	})
	g.Go(func() error {
		accs, err := a.fetcher.FetchAll(gctx, params.MintAddress)
		if err != nil {
			return err
		}
		accounts = accs
		return nil
	})

	if err := g.Wait(); err != nil {
		err = a.classify(err, params)
		a.record(err, start)
		return nil, time.Since(start), err
	}

	results, err := a.processor.Process(accounts, decimals, params)
	if err != nil {
		a.record(err, start)
		return nil, time.Since(start), err
	}

	elapsed := time.Since(start)

	a.logger.Info("analysis completed",
		zap.String("mint", params.MintAddress),
		zap.Int("total_holders", results.TotalHolders),
		zap.Int("eligible_holders", results.EligibleHolders),
		zap.Int("selected_holders", len(results.SelectedHolders)),
		zap.Duration("elapsed", elapsed))

	a.metrics.RecordAnalyze("success", elapsed.Seconds())
	a.metrics.RecordResults(results.TotalHolders, len(results.SelectedHolders))

	return results, elapsed, nil
}

// classify maps a pipeline failure to the error taxonomy. Deadline expiry
// becomes a timeout with guidance; anything untagged becomes Unexpected
// with the cause logged, not exposed.
func (a *Analyzer) classify(err error, params domain.AnalysisParams) error {
	if errors.Is(err, context.DeadlineExceeded) {
		a.logger.Warn("analysis timed out",
			zap.String("mint", params.MintAddress),
			zap.Duration("timeout", a.timeout))
		return errs.Timeout()
	}

	var tagged *errs.Error
	if errors.As(err, &tagged) {
		return tagged
	}

	a.logger.Error("unclassified analysis failure",
		zap.String("mint", params.MintAddress),
		zap.Error(err))
	return errs.Unexpected(err)
}

func (a *Analyzer) record(err error, start time.Time) {
	a.metrics.RecordAnalyze(outcomeLabel(err), time.Since(start).Seconds())
}

func outcomeLabel(err error) string {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return "validation"
	case errs.KindSourceUnavailable:
		return "source_unavailable"
	case errs.KindNoHolders:
		return "no_holders"
	case errs.KindDecimalsUnavailable:
		return "decimals_unavailable"
	case errs.KindInsufficientHolders:
		return "insufficient_holders"
	case errs.KindTimeout:
		return "timeout"
	default:
		return "unexpected"
	}
}
