package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// WriteHouseholdImpact writes the share of households affected in each
// constituency, joining results to Census 2021 household counts keyed by
// constituency code. Constituencies without a household count are skipped;
// the caller decides whether that matters.
func WriteHouseholdImpact(w io.Writer, results []model.ConstituencyResult, households map[string]int) error {
	type row struct {
		result     model.ConstituencyResult
		households int
		pct        decimal.Decimal
	}

	hundred := decimal.NewFromInt(100)
	rows := make([]row, 0, len(results))
	for _, r := range results {
		total, ok := households[r.ConstituencyID]
		if !ok || total <= 0 {
			continue
		}
		pct := decimal.NewFromInt(int64(r.Count)).Mul(hundred).Div(decimal.NewFromInt(int64(total)))
		rows = append(rows, row{result: r, households: total, pct: pct})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].pct.Equal(rows[j].pct) {
			return rows[i].pct.GreaterThan(rows[j].pct)
		}
		return rows[i].result.ConstituencyID < rows[j].result.ConstituencyID
	})

	cw := csv.NewWriter(w)
	header := []string{
		"constituency_id", "constituency", "num_sales", "total_households",
		"pct_households_affected", "avg_surcharge_per_affected",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write household impact header: %w", err)
	}
	for _, r := range rows {
		avg := decimal.Zero
		if r.result.Count > 0 {
			avg = r.result.ImpliedRevenue.Div(decimal.NewFromInt(int64(r.result.Count)))
		}
		rec := []string{
			r.result.ConstituencyID,
			r.result.Name,
			strconv.Itoa(r.result.Count),
			strconv.Itoa(r.households),
			r.pct.StringFixed(3),
			avg.StringFixed(2),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write household impact row for %s: %w", r.result.ConstituencyID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
