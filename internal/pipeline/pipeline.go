// Package pipeline runs the constituency revenue estimation as a fixed
// sequence of steps over shared state: load transactions, join postcodes to
// constituencies, classify into bands and aggregate, rescale to the
// authoritative total, write results. One invocation per run, no state kept
// between runs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ewaddington/surcharge-atlas/internal/geo"
	"github.com/ewaddington/surcharge-atlas/internal/logger"
	"github.com/ewaddington/surcharge-atlas/internal/model"
	"github.com/ewaddington/surcharge-atlas/internal/policy"
	"github.com/ewaddington/surcharge-atlas/internal/storage"
)

// Step is a single stage of the run.
type Step interface {
	Execute(ctx context.Context, state *State) error
}

// State is shared across all steps of one run.
type State struct {
	RunID  string
	Policy policy.Policy

	TransactionsURI   string
	PostcodesURI      string
	ConstituenciesURI string
	OutputDir         string

	Transactions []model.Transaction
	Index        *geo.PostcodeIndex
	Registry     *geo.Registry
	Geocoded     []model.GeocodedTransaction
	Aggregates   []model.ConstituencyAggregate
	Results      []model.ConstituencyResult

	Summary model.RunSummary
}

// Pipeline executes steps in order, stopping at the first failure.
type Pipeline struct {
	steps []Step
}

// New creates a pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially against state.
func (p *Pipeline) Execute(ctx context.Context, state *State) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewAnalysisPipeline builds the standard run.
func NewAnalysisPipeline(opener storage.Opener) *Pipeline {
	return New(
		&LoadReferenceStep{Opener: opener},
		&LoadTransactionsStep{Opener: opener},
		&GeocodeStep{},
		&AggregateStep{},
		&AllocateStep{},
		&WriteResultsStep{},
	)
}

// Config holds everything one run needs.
type Config struct {
	Policy            policy.Policy
	TransactionsURI   string
	PostcodesURI      string
	ConstituenciesURI string
	OutputDir         string
	Opener            storage.Opener
}

// Run validates the policy, executes the standard pipeline, and returns the
// final state. Configuration errors abort before any data is read.
func Run(ctx context.Context, cfg Config) (*State, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	opener := cfg.Opener
	if opener == nil {
		opener = storage.Service{}
	}

	state := &State{
		RunID:             uuid.NewString(),
		Policy:            cfg.Policy,
		TransactionsURI:   cfg.TransactionsURI,
		PostcodesURI:      cfg.PostcodesURI,
		ConstituenciesURI: cfg.ConstituenciesURI,
		OutputDir:         cfg.OutputDir,
	}
	state.Summary.RunID = state.RunID
	state.Summary.PolicyLabel = cfg.Policy.Schedule.Label
	state.Summary.StartedAt = time.Now()

	ctx = logger.WithContext(ctx, logger.WithRun(logger.FromContext(ctx), state.RunID))

	if err := NewAnalysisPipeline(opener).Execute(ctx, state); err != nil {
		return nil, err
	}
	state.Summary.Duration = time.Since(state.Summary.StartedAt)
	return state, nil
}
