package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/ewaddington/surcharge-atlas/internal/logger"
	"github.com/ewaddington/surcharge-atlas/internal/pipeline"
	"github.com/ewaddington/surcharge-atlas/internal/policy"
	"github.com/ewaddington/surcharge-atlas/internal/storage"
)

func main() {
	// Initialize structured logger
	log := logger.New()

	// Parse CLI flags
	transactions := flag.String("transactions", "", "Price Paid CSV (local path or gs:// URI)")
	postcodes := flag.String("postcodes", "", "Postcode to constituency lookup CSV")
	constituencies := flag.String("constituencies", "", "Constituency registry CSV")
	outDir := flag.String("out", "out", "Output directory")
	preset := flag.String("preset", "uk-2025", "Policy preset (uk-2025, scotland-2028)")
	flag.Parse()

	if *transactions == "" || *postcodes == "" || *constituencies == "" {
		log.Fatal().Msg("Error: -transactions, -postcodes and -constituencies are required")
	}

	pol, err := policy.Preset(*preset)
	if err != nil {
		log.Fatal().Err(err).Str("preset", *preset).Msg("Unknown policy preset")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	// Add logger to context
	ctx = logger.WithContext(ctx, log)

	log.Info().
		Str("transactions", *transactions).
		Str("policy", pol.Schedule.Label).
		Msg("Starting analysis")

	state, err := pipeline.Run(ctx, pipeline.Config{
		Policy:            pol,
		TransactionsURI:   *transactions,
		PostcodesURI:      *postcodes,
		ConstituenciesURI: *constituencies,
		OutputDir:         *outDir,
		Opener:            storage.Service{},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	fmt.Printf("Run %s completed: %d constituencies, results in %s\n",
		state.RunID, len(state.Results), *outDir)
}
