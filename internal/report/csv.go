// Package report writes per-constituency results as CSV for downstream
// reporting and visualization, and reads them back for the publish and sync
// commands.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

var resultHeader = []string{
	"constituency_id", "constituency", "num_sales",
	"mean_price", "median_price", "total_value",
	"implied_revenue", "allocated_revenue", "share_of_total",
}

// WriteResults writes one row per constituency. Money columns are fixed to
// two decimal places; shares carry six for round-tripping.
func WriteResults(w io.Writer, results []model.ConstituencyResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(resultHeader); err != nil {
		return fmt.Errorf("write results header: %w", err)
	}
	for _, r := range results {
		row := []string{
			r.ConstituencyID,
			r.Name,
			strconv.Itoa(r.Count),
			r.MeanPrice.StringFixed(2),
			r.MedianPrice.StringFixed(2),
			r.TotalValue.StringFixed(2),
			r.ImpliedRevenue.StringFixed(2),
			r.AllocatedRevenue.StringFixed(2),
			r.ShareOfTotal.StringFixed(6),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write results row for %s: %w", r.ConstituencyID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadResults parses a results CSV produced by WriteResults.
func ReadResults(r io.Reader) ([]model.ConstituencyResult, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read results header: %w", err)
	}
	if len(header) != len(resultHeader) {
		return nil, fmt.Errorf("unexpected results header: %v", header)
	}

	var results []model.ConstituencyResult
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read results row: %w", err)
		}

		count, err := strconv.Atoi(rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %s: bad num_sales %q: %w", rec[0], rec[2], err)
		}
		cols := make([]decimal.Decimal, 6)
		for i, field := range rec[3:] {
			d, err := decimal.NewFromString(field)
			if err != nil {
				return nil, fmt.Errorf("row %s: bad %s %q: %w", rec[0], resultHeader[i+3], field, err)
			}
			cols[i] = d
		}

		results = append(results, model.ConstituencyResult{
			ConstituencyAggregate: model.ConstituencyAggregate{
				ConstituencyID: rec[0],
				Name:           rec[1],
				Count:          count,
				MeanPrice:      cols[0],
				MedianPrice:    cols[1],
				TotalValue:     cols[2],
				ImpliedRevenue: cols[3],
			},
			AllocatedRevenue: cols[4],
			ShareOfTotal:     cols[5],
		})
	}
	return results, nil
}

// WriteRunSummary writes the run-level tallies as a one-row CSV sidecar so
// excluded records stay visible next to the aggregates.
func WriteRunSummary(w io.Writer, s model.RunSummary) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{"run_id", "policy", "loaded", "matched", "unmatched", "malformed", "below_threshold", "duration_ms"},
		{
			s.RunID,
			s.PolicyLabel,
			strconv.Itoa(s.Loaded),
			strconv.Itoa(s.Matched),
			strconv.Itoa(s.Unmatched),
			strconv.Itoa(s.Malformed),
			strconv.Itoa(s.BelowThreshold),
			strconv.FormatInt(s.Duration.Milliseconds(), 10),
		},
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write run summary: %w", err)
	}
	return nil
}
