package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ewaddington/surcharge-atlas/internal/allocate"
	"github.com/ewaddington/surcharge-atlas/internal/geo"
	"github.com/ewaddington/surcharge-atlas/internal/logger"
	"github.com/ewaddington/surcharge-atlas/internal/model"
	"github.com/ewaddington/surcharge-atlas/internal/pricepaid"
	"github.com/ewaddington/surcharge-atlas/internal/report"
	"github.com/ewaddington/surcharge-atlas/internal/storage"
)

// LoadReferenceStep loads the postcode lookup and the constituency registry.
// Missing or empty reference data is fatal: without the reference geography
// there is nothing to aggregate into.
type LoadReferenceStep struct {
	Opener storage.Opener
}

func (s *LoadReferenceStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	rc, err := s.Opener.Open(ctx, state.ConstituenciesURI)
	if err != nil {
		return fmt.Errorf("open constituency registry: %w", err)
	}
	reg, err := geo.LoadRegistry(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("load constituency registry: %w", err)
	}
	state.Registry = reg

	pc, err := s.Opener.Open(ctx, state.PostcodesURI)
	if err != nil {
		return fmt.Errorf("open postcode lookup: %w", err)
	}
	idx, err := geo.LoadPostcodeIndex(pc)
	pc.Close()
	if err != nil {
		return fmt.Errorf("load postcode lookup: %w", err)
	}
	state.Index = idx

	log.Info().
		Int("constituencies", reg.Len()).
		Int("postcodes", idx.Len()).
		Msg("Loaded reference data")
	return nil
}

// LoadTransactionsStep parses the Price Paid dataset, pre-filtering to the
// schedule threshold.
type LoadTransactionsStep struct {
	Opener storage.Opener
}

func (s *LoadTransactionsStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	rc, err := s.Opener.Open(ctx, state.TransactionsURI)
	if err != nil {
		return fmt.Errorf("open transactions: %w", err)
	}
	defer rc.Close()

	res, err := pricepaid.Parse(rc, state.Policy.Schedule.Threshold(), log)
	if err != nil {
		return fmt.Errorf("parse transactions: %w", err)
	}

	state.Transactions = res.Transactions
	state.Summary.Loaded = len(res.Transactions)
	state.Summary.Malformed = res.Malformed
	state.Summary.BelowThreshold = res.BelowThreshold
	return nil
}

// GeocodeStep joins transactions to constituencies. Unmatched postcodes are
// excluded and tallied, never dropped silently.
type GeocodeStep struct{}

func (s *GeocodeStep) Execute(ctx context.Context, state *State) error {
	log := logger.FromContext(ctx)

	geocoded := make([]model.GeocodedTransaction, 0, len(state.Transactions))
	unmatched := 0
	for _, tx := range state.Transactions {
		code, ok := state.Index.Lookup(tx.Postcode)
		if !ok {
			unmatched++
			log.Debug().
				Str("transaction_id", tx.TransactionID).
				Str("postcode", tx.Postcode).
				Msg("No constituency for postcode")
			continue
		}
		geocoded = append(geocoded, model.GeocodedTransaction{Transaction: tx, ConstituencyID: code})
	}

	state.Geocoded = geocoded
	state.Summary.Matched = len(geocoded)
	state.Summary.Unmatched = unmatched

	log.Info().
		Int("matched", len(geocoded)).
		Int("unmatched", unmatched).
		Msg("Geocoded transactions")
	return nil
}

// AggregateStep classifies into bands and reduces to per-constituency counts
// and implied revenue.
type AggregateStep struct{}

func (s *AggregateStep) Execute(ctx context.Context, state *State) error {
	aggs, below, err := Aggregate(state.Geocoded, state.Policy.Schedule, state.Registry)
	if err != nil {
		return err
	}
	state.Aggregates = aggs
	state.Summary.BelowThreshold += below

	log := logger.FromContext(ctx)
	log.Info().
		Int("constituencies", len(aggs)).
		Msg("Aggregated by constituency")
	return nil
}

// AllocateStep rescales implied revenue to the policy's authoritative total.
type AllocateStep struct{}

func (s *AllocateStep) Execute(ctx context.Context, state *State) error {
	results, err := allocate.Allocate(state.Aggregates, state.Policy.AuthoritativeTotal)
	if err != nil {
		return err
	}
	state.Results = results

	log := logger.FromContext(ctx)
	log.Info().
		Str("authoritative_total", state.Policy.AuthoritativeTotal.String()).
		Str("total_source", state.Policy.TotalSource).
		Msg("Allocated revenue to constituencies")
	return nil
}

// WriteResultsStep writes the results table and the run summary sidecar to
// OutputDir. Skipped when OutputDir is empty (callers consuming State
// directly, e.g. tests or the publish command).
type WriteResultsStep struct{}

func (s *WriteResultsStep) Execute(ctx context.Context, state *State) error {
	if state.OutputDir == "" {
		return nil
	}
	state.Summary.Duration = time.Since(state.Summary.StartedAt)
	if err := os.MkdirAll(state.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	resultsPath := filepath.Join(state.OutputDir, "constituency_results.csv")
	f, err := os.Create(resultsPath)
	if err != nil {
		return fmt.Errorf("create results file: %w", err)
	}
	if err := report.WriteResults(f, state.Results); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close results file: %w", err)
	}

	summaryPath := filepath.Join(state.OutputDir, "run_summary.csv")
	sf, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("create summary file: %w", err)
	}
	if err := report.WriteRunSummary(sf, state.Summary); err != nil {
		sf.Close()
		return err
	}
	if err := sf.Close(); err != nil {
		return fmt.Errorf("close summary file: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info().
		Str("results", resultsPath).
		Str("summary", summaryPath).
		Msg("Wrote output files")
	return nil
}
