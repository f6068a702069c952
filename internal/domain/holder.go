// Package domain defines the core entities of holder analysis.
package domain

// TokenHolder is one holder entry derived from a raw token account.
// Amount is the human-readable balance (raw integer scaled by the mint's
// decimals). A wallet owning several token accounts appears once per
// account; entries are not aggregated by owner.
type TokenHolder struct {
	Address string  `json:"address"`
	Amount  float64 `json:"amount"`
}

// AnalysisParams are the caller-supplied analysis parameters. They are
// validated before any network call is made.
type AnalysisParams struct {
	MintAddress       string  `json:"mintAddress"`
	MinHoldings       float64 `json:"minHoldings"`
	NumberOfHolders   int     `json:"numberOfHolders"`
	ExcludeTopPercent float64 `json:"excludeTopPercent"`
}

// AmountStats summarizes the selected holders' amounts.
// Bounds are mean -/+ one standard deviation.
type AmountStats struct {
	Mean              float64 `json:"mean"`
	StandardDeviation float64 `json:"standardDeviation"`
	LowerBound        float64 `json:"lowerBound"`
	UpperBound        float64 `json:"upperBound"`
}

// AnalysisResults is the outcome of one analysis request.
//
// TotalHolders counts every raw account fetched for the mint.
// EligibleHolders counts survivors of top-exclusion and minimum-holdings
// filtering. SelectedHolders has exactly the requested length on success
// and keeps the post-shuffle order.
type AnalysisResults struct {
	TotalHolders    int           `json:"totalHolders"`
	EligibleHolders int           `json:"eligibleHolders"`
	SelectedHolders []TokenHolder `json:"selectedHolders"`
	Stats           AmountStats   `json:"stats"`
}
