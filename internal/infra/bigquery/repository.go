// Package bigquery implements the warehouse repository against Google
// BigQuery. Publishing is optional: the batch run itself never touches the
// network, this layer only pushes finished results for dashboards.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	bq "github.com/ewaddington/surcharge-atlas/internal/bigquery"
)

const (
	defaultDatasetID = "surcharge"
	runsTable        = "runs"
	resultsTable     = "constituency_results"
)

// Repository is the BigQuery-backed implementation of bq.ResultRepository.
// It holds a shared client to avoid creating a new connection per operation.
type Repository struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

var _ bq.ResultRepository = (*Repository)(nil)

// NewRepository creates a repository for the given project. An empty dataset
// selects the default "surcharge" dataset.
func NewRepository(ctx context.Context, projectID, datasetID string) (*Repository, error) {
	if datasetID == "" {
		datasetID = defaultDatasetID
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return &Repository{client: client, projectID: projectID, datasetID: datasetID}, nil
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// InsertRun records the run-level summary row via the streaming inserter.
func (r *Repository) InsertRun(ctx context.Context, row *bq.RunRow) error {
	table := r.client.DatasetInProject(r.projectID, r.datasetID).Table(runsTable)
	if err := table.Inserter().Put(ctx, row); err != nil {
		return fmt.Errorf("InsertRun: inserting row: %w", err)
	}
	return nil
}

// InsertResults inserts the per-constituency rows for a run.
func (r *Repository) InsertResults(ctx context.Context, rows []*bq.ResultRow) error {
	if len(rows) == 0 {
		return nil
	}
	table := r.client.DatasetInProject(r.projectID, r.datasetID).Table(resultsTable)
	if err := table.Inserter().Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertResults: inserting rows: %w", err)
	}
	return nil
}

// ListRuns retrieves run summaries, most recent first.
func (r *Repository) ListRuns(ctx context.Context) ([]*bq.RunRow, error) {
	query := fmt.Sprintf(`
		SELECT
			run_id,
			policy_label,
			loaded,
			matched,
			unmatched,
			malformed,
			below_threshold,
			started_ts,
			duration_ms
		FROM `+"`%s.%s.%s`"+`
		ORDER BY started_ts DESC
	`, r.projectID, r.datasetID, runsTable)

	it, err := r.client.Query(query).Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListRuns: reading query: %w", err)
	}

	var runs []*bq.RunRow
	for {
		var row bq.RunRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListRuns: iterating: %w", err)
		}
		runs = append(runs, &row)
	}
	return runs, nil
}

// QueryResultsByRun reads back a run's constituency rows ordered by allocated
// revenue descending.
func (r *Repository) QueryResultsByRun(ctx context.Context, runID string) ([]*bq.ResultRow, error) {
	query := fmt.Sprintf(`
		SELECT
			run_id,
			constituency_id,
			constituency,
			num_sales,
			mean_price,
			median_price,
			total_value,
			implied_revenue,
			allocated_revenue,
			share_of_total,
			created_ts
		FROM `+"`%s.%s.%s`"+`
		WHERE run_id = @run_id
		ORDER BY allocated_revenue DESC
	`, r.projectID, r.datasetID, resultsTable)

	q := r.client.Query(query)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "run_id", Value: runID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryResultsByRun: reading query: %w", err)
	}

	var rows []*bq.ResultRow
	for {
		var row bq.ResultRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryResultsByRun: iterating: %w", err)
		}
		rows = append(rows, &row)
	}
	return rows, nil
}
