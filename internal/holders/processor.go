package holders

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"solana-holder-sampler/internal/domain"
	"solana-holder-sampler/internal/errs"
	"solana-holder-sampler/internal/solana"
)

// Processor ranks, filters, and samples holders. Sampling randomness does
// not need to be cryptographically secure.
type Processor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewProcessor creates a Processor with time-seeded randomness.
func NewProcessor() *Processor {
	return &Processor{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewProcessorWithRand creates a Processor with the given randomness
// source, for reproducible tests.
func NewProcessorWithRand(rng *rand.Rand) *Processor {
	return &Processor{rng: rng}
}

// Process runs the pipeline over raw accounts:
// normalize amounts, rank descending, drop the top excludeTopPercent,
// keep amounts >= minHoldings, then uniformly sample numberOfHolders
// without replacement.
//
// Accounts are not aggregated by owner: a wallet with several token
// accounts appears once per account, so its owner can be selected more
// than once across those accounts.
func (p *Processor) Process(accounts []solana.TokenAccount, decimals uint8, params domain.AnalysisParams) (*domain.AnalysisResults, error) {
	all, err := Normalize(accounts, decimals)
	if err != nil {
		return nil, err
	}

	totalHolders := len(all)

	// Rank by amount descending. The sort is stable so equal amounts keep
	// their original fetch order, which keeps sampling reproducible for
	// identical input.
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Amount > all[j].Amount
	})

	excludeCount := int(math.Floor(float64(totalHolders) * params.ExcludeTopPercent / 100))

	eligible := make([]domain.TokenHolder, 0, totalHolders-excludeCount)
	for _, h := range all[excludeCount:] {
		if h.Amount >= params.MinHoldings {
			eligible = append(eligible, h)
		}
	}

	if len(eligible) < params.NumberOfHolders {
		return nil, errs.InsufficientHolders(len(eligible), params.NumberOfHolders)
	}

	selected := p.sample(eligible, params.NumberOfHolders)

	return &domain.AnalysisResults{
		TotalHolders:    totalHolders,
		EligibleHolders: len(eligible),
		SelectedHolders: selected,
		Stats:           computeStats(selected),
	}, nil
}

// Normalize converts raw accounts into holders, scaling each raw integer
// amount by the mint's decimals. The division is done in decimal space so
// the conversion is exact for every raw amount/decimals pair.
func Normalize(accounts []solana.TokenAccount, decimals uint8) ([]domain.TokenHolder, error) {
	holders := make([]domain.TokenHolder, len(accounts))
	for i, acc := range accounts {
		raw, err := decimal.NewFromString(acc.Amount)
		if err != nil {
			return nil, errs.SourceUnavailable(
				fmt.Errorf("account %s has unparseable amount %q: %w", acc.Owner, acc.Amount, err))
		}
		holders[i] = domain.TokenHolder{
			Address: acc.Owner,
			Amount:  raw.Shift(-int32(decimals)).InexactFloat64(),
		}
	}
	return holders, nil
}

// sample returns count holders drawn uniformly without replacement, in
// post-shuffle order. Fisher-Yates over a copy of the eligible set: every
// subset of the requested size is equally likely.
func (p *Processor) sample(eligible []domain.TokenHolder, count int) []domain.TokenHolder {
	shuffled := make([]domain.TokenHolder, len(eligible))
	copy(shuffled, eligible)

	p.mu.Lock()
	for i := len(shuffled) - 1; i > 0; i-- {
		j := p.rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	p.mu.Unlock()

	return shuffled[:count]
}

// computeStats summarizes the selected amounts with mean and population
// standard deviation; bounds are mean -/+ one deviation.
func computeStats(selected []domain.TokenHolder) domain.AmountStats {
	if len(selected) == 0 {
		return domain.AmountStats{}
	}

	var sum float64
	for _, h := range selected {
		sum += h.Amount
	}
	mean := sum / float64(len(selected))

	var sqDiff float64
	for _, h := range selected {
		d := h.Amount - mean
		sqDiff += d * d
	}
	stddev := math.Sqrt(sqDiff / float64(len(selected)))

	return domain.AmountStats{
		Mean:              mean,
		StandardDeviation: stddev,
		LowerBound:        mean - stddev,
		UpperBound:        mean + stddev,
	}
}
