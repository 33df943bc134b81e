package scotland

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/allocate"
	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// Estimate is the per-constituency output row of the Scottish analysis.
type Estimate struct {
	Constituency     string
	Council          string
	Population       int
	WealthFactor     decimal.Decimal
	Weight           decimal.Decimal
	EstimatedSales   decimal.Decimal
	BandISales       decimal.Decimal
	BandJSales       decimal.Decimal
	ImpliedRevenue   decimal.Decimal
	AllocatedRevenue decimal.Decimal
	ShareOfTotal     decimal.Decimal
}

// Analysis holds the full constituency table plus run-level figures.
type Analysis struct {
	Estimates    []Estimate
	TotalSales   decimal.Decimal
	TotalRevenue decimal.Decimal
	AverageRate  decimal.Decimal
}

// Estimates are sorted by estimated sales descending, then by name for
// deterministic output.

// Analyze distributes council-level sales estimates to constituencies using
// the supplied weights and allocates authoritativeTotal proportionally. A
// zero authoritativeTotal selects the stock-based estimate
// (EstimatedStock × AverageRate).
func Analyze(weights map[string]Weight, authoritativeTotal decimal.Decimal, log zerolog.Logger) (*Analysis, error) {
	if authoritativeTotal.IsZero() {
		authoritativeTotal = StockRevenue()
	}

	totalSales := decimal.Zero
	for _, n := range CouncilSales {
		totalSales = totalSales.Add(decimal.NewFromInt(int64(n)))
	}

	estimates := make([]Estimate, 0, len(weights))
	aggregates := make([]model.ConstituencyAggregate, 0, len(weights))
	for _, w := range weights {
		councilSales := decimal.NewFromInt(int64(CouncilSales[w.Council]))
		sales := councilSales.Mul(w.Share)

		bandI := sales.Mul(BandIRatio)
		bandJ := sales.Mul(BandJRatio)
		implied := bandI.Mul(BandIRate).Add(bandJ.Mul(BandJRate))

		estimates = append(estimates, Estimate{
			Constituency:   w.Constituency,
			Council:        w.Council,
			Population:     w.Population,
			WealthFactor:   w.WealthFactor,
			Weight:         w.Share,
			EstimatedSales: sales,
			BandISales:     bandI,
			BandJSales:     bandJ,
			ImpliedRevenue: implied,
		})
		aggregates = append(aggregates, model.ConstituencyAggregate{
			ConstituencyID: w.Constituency,
			Name:           w.Constituency,
			ImpliedRevenue: implied,
		})
	}

	results, err := allocate.Allocate(aggregates, authoritativeTotal)
	if err != nil {
		return nil, err
	}
	allocated := make(map[string]model.ConstituencyResult, len(results))
	for _, r := range results {
		allocated[r.ConstituencyID] = r
	}
	for i := range estimates {
		r := allocated[estimates[i].Constituency]
		estimates[i].AllocatedRevenue = r.AllocatedRevenue
		estimates[i].ShareOfTotal = r.ShareOfTotal
	}

	sort.Slice(estimates, func(i, j int) bool {
		if !estimates[i].EstimatedSales.Equal(estimates[j].EstimatedSales) {
			return estimates[i].EstimatedSales.GreaterThan(estimates[j].EstimatedSales)
		}
		return estimates[i].Constituency < estimates[j].Constituency
	})

	log.Info().
		Int("constituencies", len(estimates)).
		Str("total_sales", totalSales.String()).
		Str("total_revenue", authoritativeTotal.StringFixed(0)).
		Str("average_rate", AverageRate().StringFixed(0)).
		Msg("Scottish constituency analysis complete")

	return &Analysis{
		Estimates:    estimates,
		TotalSales:   totalSales,
		TotalRevenue: authoritativeTotal,
		AverageRate:  AverageRate(),
	}, nil
}
