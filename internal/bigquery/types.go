// Package bigquery defines the warehouse row types and the repository
// interface for publishing run results. The concrete implementation lives in
// internal/infra/bigquery.
package bigquery

import (
	"context"
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// ResultRepository provides warehouse operations for constituency results.
type ResultRepository interface {
	// InsertRun records the run-level summary row.
	InsertRun(ctx context.Context, row *RunRow) error

	// InsertResults inserts the per-constituency rows for a run.
	InsertResults(ctx context.Context, rows []*ResultRow) error

	// ListRuns retrieves run summaries, most recent first.
	ListRuns(ctx context.Context) ([]*RunRow, error)

	// QueryResultsByRun reads back a run's constituency rows ordered by
	// allocated revenue descending.
	QueryResultsByRun(ctx context.Context, runID string) ([]*ResultRow, error)
}

// RunRow represents a run record in BigQuery.
type RunRow struct {
	RunID       string `bigquery:"run_id"`       // REQUIRED
	PolicyLabel string `bigquery:"policy_label"` // REQUIRED

	Loaded         int64 `bigquery:"loaded"`
	Matched        int64 `bigquery:"matched"`
	Unmatched      int64 `bigquery:"unmatched"`
	Malformed      int64 `bigquery:"malformed"`
	BelowThreshold int64 `bigquery:"below_threshold"`

	StartedTS  time.Time `bigquery:"started_ts"` // REQUIRED
	DurationMS int64     `bigquery:"duration_ms"`
}

// ResultRow represents a per-constituency result record in BigQuery. Money
// columns are NUMERIC.
type ResultRow struct {
	RunID string `bigquery:"run_id"` // REQUIRED

	ConstituencyID string `bigquery:"constituency_id"` // REQUIRED
	Constituency   string `bigquery:"constituency"`    // NULLABLE

	NumSales int64 `bigquery:"num_sales"`

	MeanPrice        *big.Rat `bigquery:"mean_price"`        // NULLABLE NUMERIC
	MedianPrice      *big.Rat `bigquery:"median_price"`      // NULLABLE NUMERIC
	TotalValue       *big.Rat `bigquery:"total_value"`       // NULLABLE NUMERIC
	ImpliedRevenue   *big.Rat `bigquery:"implied_revenue"`   // REQUIRED NUMERIC
	AllocatedRevenue *big.Rat `bigquery:"allocated_revenue"` // REQUIRED NUMERIC

	ShareOfTotal float64 `bigquery:"share_of_total"`

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// NewRunRow converts a run summary into its warehouse row.
func NewRunRow(s model.RunSummary) *RunRow {
	return &RunRow{
		RunID:          s.RunID,
		PolicyLabel:    s.PolicyLabel,
		Loaded:         int64(s.Loaded),
		Matched:        int64(s.Matched),
		Unmatched:      int64(s.Unmatched),
		Malformed:      int64(s.Malformed),
		BelowThreshold: int64(s.BelowThreshold),
		StartedTS:      s.StartedAt,
		DurationMS:     s.Duration.Milliseconds(),
	}
}

// NewResultRows converts constituency results into warehouse rows stamped
// with the run ID and insertion time.
func NewResultRows(runID string, results []model.ConstituencyResult, now time.Time) []*ResultRow {
	rows := make([]*ResultRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, &ResultRow{
			RunID:            runID,
			ConstituencyID:   r.ConstituencyID,
			Constituency:     r.Name,
			NumSales:         int64(r.Count),
			MeanPrice:        rat(r.MeanPrice),
			MedianPrice:      rat(r.MedianPrice),
			TotalValue:       rat(r.TotalValue),
			ImpliedRevenue:   rat(r.ImpliedRevenue),
			AllocatedRevenue: rat(r.AllocatedRevenue),
			ShareOfTotal:     r.ShareOfTotal.InexactFloat64(),
			CreatedTS:        now,
		})
	}
	return rows
}

func rat(d decimal.Decimal) *big.Rat {
	return d.Rat()
}
