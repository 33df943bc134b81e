package pipeline

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/geo"
	"github.com/ewaddington/surcharge-atlas/internal/model"
	"github.com/ewaddington/surcharge-atlas/internal/policy"
)

// Aggregate classifies each geocoded transaction into a surcharge band and
// reduces to per-constituency statistics. The reduction is commutative, so
// input order never affects the result. Every constituency in the reference
// geography appears in the output, zero-valued when it had no matching sales.
//
// The second return value counts transactions under the schedule threshold,
// which are excluded from aggregates (the loader pre-filters, but geocoded
// data from other sources may not be filtered).
func Aggregate(txs []model.GeocodedTransaction, sched policy.Schedule, reg *geo.Registry) ([]model.ConstituencyAggregate, int, error) {
	type acc struct {
		count   int
		total   decimal.Decimal
		implied decimal.Decimal
		prices  []decimal.Decimal
		bands   map[string]int
	}

	accs := make(map[string]*acc)
	for _, code := range reg.Codes() {
		accs[code] = &acc{bands: make(map[string]int)}
	}

	belowThreshold := 0
	for _, tx := range txs {
		band, err := sched.Classify(tx.Price)
		if errors.Is(err, policy.ErrBelowThreshold) {
			belowThreshold++
			continue
		}
		if err != nil {
			return nil, 0, err
		}

		a, ok := accs[tx.ConstituencyID]
		if !ok {
			// Geocoder output outside the reference geography means the
			// lookup and registry disagree about boundaries.
			return nil, 0, model.Configf("constituency %s from postcode lookup is not in the reference geography", tx.ConstituencyID)
		}
		a.count++
		a.total = a.total.Add(tx.Price)
		a.implied = a.implied.Add(band.Rate)
		a.prices = append(a.prices, tx.Price)
		a.bands[band.Name]++
	}

	aggs := make([]model.ConstituencyAggregate, 0, len(accs))
	for code, a := range accs {
		name, _ := reg.Name(code)
		agg := model.ConstituencyAggregate{
			ConstituencyID: code,
			Name:           name,
			Count:          a.count,
			TotalValue:     a.total,
			ImpliedRevenue: a.implied,
			BandCounts:     a.bands,
		}
		if a.count > 0 {
			agg.MeanPrice = a.total.Div(decimal.NewFromInt(int64(a.count)))
			agg.MedianPrice = median(a.prices)
		}
		aggs = append(aggs, agg)
	}

	// Busiest constituencies first; ID breaks ties so output is stable.
	sort.Slice(aggs, func(i, j int) bool {
		if aggs[i].Count != aggs[j].Count {
			return aggs[i].Count > aggs[j].Count
		}
		return aggs[i].ConstituencyID < aggs[j].ConstituencyID
	})
	return aggs, belowThreshold, nil
}

func median(prices []decimal.Decimal) decimal.Decimal {
	sorted := make([]decimal.Decimal, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return sorted[n/2-1].Add(sorted[n/2]).Div(decimal.NewFromInt(2))
}
