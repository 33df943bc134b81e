package scotland

import (
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func nopLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func TestReferenceMappingCoversAllConstituencies(t *testing.T) {
	if len(ConstituencyCouncil) != ExpectedConstituencies {
		t.Errorf("mapping has %d constituencies, want %d", len(ConstituencyCouncil), ExpectedConstituencies)
	}
	for constituency, council := range ConstituencyCouncil {
		if _, ok := CouncilSales[council]; !ok {
			t.Errorf("constituency %q maps to unknown council %q", constituency, council)
		}
	}
}

func TestAverageRate(t *testing.T) {
	// (416/466)×1500 + (50/466)×2500 ≈ 1607.30
	got := AverageRate()
	if got.LessThan(decimal.NewFromInt(1607)) || got.GreaterThan(decimal.NewFromInt(1608)) {
		t.Errorf("AverageRate() = %s, want ≈1607", got)
	}
}

func TestStockRevenue(t *testing.T) {
	// 11,481 × ≈£1,607 ≈ £18.5m
	got := StockRevenue()
	if got.LessThan(decimal.NewFromInt(18_400_000)) || got.GreaterThan(decimal.NewFromInt(18_600_000)) {
		t.Errorf("StockRevenue() = %s, want ≈18.5m", got)
	}
}

func TestLoadPopulations(t *testing.T) {
	in := `constituency,population
Edinburgh Central,92000
Edinburgh Southern,88000
Broken Row,not-a-number
`
	pops, err := LoadPopulations(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadPopulations failed: %v", err)
	}
	if len(pops) != 2 {
		t.Errorf("got %d populations, want 2", len(pops))
	}
	if pops["Edinburgh Central"] != 92000 {
		t.Errorf("population(Edinburgh Central) = %d, want 92000", pops["Edinburgh Central"])
	}
}

func TestLoadPopulationsRejectsBadHeader(t *testing.T) {
	if _, err := LoadPopulations(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Fatal("expected error for missing columns")
	}
}

func TestLoadWealthFactors(t *testing.T) {
	in := `constituency,wealth_factor
Edinburgh Southern,5.26
Edinburgh Central,4.85
Glasgow Provan,-1
`
	factors, err := LoadWealthFactors(strings.NewReader(in))
	if err != nil {
		t.Fatalf("LoadWealthFactors failed: %v", err)
	}
	if len(factors) != 2 {
		t.Errorf("got %d factors, want 2 (negative dropped)", len(factors))
	}
	if !factors["Edinburgh Southern"].Equal(decimal.NewFromFloat(5.26)) {
		t.Errorf("factor(Edinburgh Southern) = %s, want 5.26", factors["Edinburgh Southern"])
	}
}

func TestComputeWeightsSumToOnePerCouncil(t *testing.T) {
	weights := ComputeWeights(map[string]int{}, map[string]decimal.Decimal{}, nopLogger())

	if len(weights) != ExpectedConstituencies {
		t.Fatalf("got %d weights, want %d", len(weights), ExpectedConstituencies)
	}

	sums := make(map[string]decimal.Decimal)
	for _, w := range weights {
		if w.Share.IsNegative() {
			t.Errorf("negative weight for %s", w.Constituency)
		}
		sums[w.Council] = sums[w.Council].Add(w.Share)
	}

	one := decimal.NewFromInt(1)
	tolerance := decimal.NewFromFloat(1e-9)
	for council, sum := range sums {
		if sum.Sub(one).Abs().GreaterThan(tolerance) {
			t.Errorf("weights for %s sum to %s, want 1", council, sum)
		}
	}
}

func TestComputeWeightsWealthAdjustment(t *testing.T) {
	pops := map[string]int{
		"Edinburgh Central":            100000,
		"Edinburgh Western":            100000,
		"Edinburgh Southern":           100000,
		"Edinburgh Pentlands":          100000,
		"Edinburgh Northern and Leith": 100000,
		"Edinburgh Eastern":            100000,
	}
	factors := map[string]decimal.Decimal{
		"Edinburgh Central": decimal.NewFromInt(5),
	}

	weights := ComputeWeights(pops, factors, nopLogger())

	// Equal populations but Central carries 5x: 5/(5+1×5) = 0.5.
	central := weights["Edinburgh Central"]
	if !central.Share.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("weight(Edinburgh Central) = %s, want 0.5", central.Share)
	}
	western := weights["Edinburgh Western"]
	if !western.Share.Equal(decimal.NewFromFloat(0.1)) {
		t.Errorf("weight(Edinburgh Western) = %s, want 0.1", western.Share)
	}
}

func TestComputeWeightsDefaultsPopulation(t *testing.T) {
	weights := ComputeWeights(map[string]int{}, nil, nopLogger())
	if w := weights["Stirling"]; w.Population != DefaultPopulation {
		t.Errorf("population(Stirling) = %d, want default %d", w.Population, DefaultPopulation)
	}
}

func TestAnalyze(t *testing.T) {
	weights := ComputeWeights(map[string]int{}, nil, nopLogger())

	analysis, err := Analyze(weights, decimal.Zero, nopLogger())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if len(analysis.Estimates) != ExpectedConstituencies {
		t.Fatalf("got %d estimates, want %d", len(analysis.Estimates), ExpectedConstituencies)
	}

	sumAllocated := decimal.Zero
	sumSales := decimal.Zero
	for _, e := range analysis.Estimates {
		if e.EstimatedSales.IsNegative() || e.AllocatedRevenue.IsNegative() {
			t.Errorf("negative values for %s", e.Constituency)
		}
		sumAllocated = sumAllocated.Add(e.AllocatedRevenue)
		sumSales = sumSales.Add(e.EstimatedSales)
	}

	if sumAllocated.Sub(analysis.TotalRevenue).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		t.Errorf("Σ allocated = %s, want %s", sumAllocated, analysis.TotalRevenue)
	}
	if sumSales.Sub(analysis.TotalSales).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		t.Errorf("Σ estimated sales = %s, want %s", sumSales, analysis.TotalSales)
	}

	// Edinburgh dominates: its six constituencies hold 200 of 391 sales.
	edinburgh := decimal.Zero
	for _, e := range analysis.Estimates {
		if e.Council == "City of Edinburgh" {
			edinburgh = edinburgh.Add(e.EstimatedSales)
		}
	}
	if !edinburgh.Equal(decimal.NewFromInt(200)) {
		t.Errorf("Edinburgh sales = %s, want 200", edinburgh)
	}

	// Sorted by estimated sales descending.
	for i := 1; i < len(analysis.Estimates); i++ {
		if analysis.Estimates[i].EstimatedSales.GreaterThan(analysis.Estimates[i-1].EstimatedSales) {
			t.Errorf("estimates not sorted at index %d", i)
		}
	}
}

func TestAnalyzeWithGovEstimate(t *testing.T) {
	weights := ComputeWeights(map[string]int{}, nil, nopLogger())

	total := decimal.NewFromInt(16_000_000)
	analysis, err := Analyze(weights, total, nopLogger())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	sum := decimal.Zero
	for _, e := range analysis.Estimates {
		sum = sum.Add(e.AllocatedRevenue)
	}
	if sum.Sub(total).Abs().GreaterThan(decimal.NewFromFloat(0.01)) {
		t.Errorf("Σ allocated = %s, want %s", sum, total)
	}
}
