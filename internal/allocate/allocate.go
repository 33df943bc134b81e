// Package allocate rescales per-constituency implied revenue so the national
// total matches an externally supplied authoritative estimate. Sales-derived
// revenue only fixes the geographic distribution; the level comes from the
// official costing.
package allocate

import (
	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// Allocate distributes authoritativeTotal across the aggregates in proportion
// to their implied revenue:
//
//	allocated = implied × (authoritativeTotal / Σ implied)
//
// The allocated values sum to authoritativeTotal within decimal division
// tolerance and the operation is invariant under uniform scaling of the
// implied values. A zero implied sum has no defined ratio and is surfaced as
// a ConfigError rather than silently producing zeros.
func Allocate(aggs []model.ConstituencyAggregate, authoritativeTotal decimal.Decimal) ([]model.ConstituencyResult, error) {
	if authoritativeTotal.Sign() <= 0 {
		return nil, model.Configf("authoritative total must be positive, got %s", authoritativeTotal)
	}

	sum := decimal.Zero
	for _, agg := range aggs {
		if agg.ImpliedRevenue.Sign() < 0 {
			return nil, model.Configf("constituency %s has negative implied revenue %s",
				agg.ConstituencyID, agg.ImpliedRevenue)
		}
		sum = sum.Add(agg.ImpliedRevenue)
	}
	if sum.Sign() == 0 {
		return nil, model.Configf("total implied revenue is zero; allocation ratio is undefined")
	}

	results := make([]model.ConstituencyResult, 0, len(aggs))
	for _, agg := range aggs {
		// Multiply before dividing to keep precision on small shares.
		allocated := agg.ImpliedRevenue.Mul(authoritativeTotal).Div(sum)
		results = append(results, model.ConstituencyResult{
			ConstituencyAggregate: agg,
			AllocatedRevenue:      allocated,
			ShareOfTotal:          agg.ImpliedRevenue.Div(sum),
		})
	}
	return results, nil
}
