package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/bigquery"
	"github.com/ewaddington/surcharge-atlas/internal/census"
	infraBQ "github.com/ewaddington/surcharge-atlas/internal/infra/bigquery"
	"github.com/ewaddington/surcharge-atlas/internal/logger"
	"github.com/ewaddington/surcharge-atlas/internal/model"
	"github.com/ewaddington/surcharge-atlas/internal/notionsync"
	"github.com/ewaddington/surcharge-atlas/internal/pipeline"
	"github.com/ewaddington/surcharge-atlas/internal/policy"
	"github.com/ewaddington/surcharge-atlas/internal/report"
	"github.com/ewaddington/surcharge-atlas/internal/scotland"
	"github.com/ewaddington/surcharge-atlas/internal/storage"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "analyze":
		runAnalyze(log)
	case "scotland":
		runScotland(log)
	case "household-impact":
		runHouseholdImpact(log)
	case "publish":
		runPublish(log)
	case "runs":
		runRuns(log)
	case "sync-notion":
		runSyncNotion(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Surcharge Atlas CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze           Run the UK constituency revenue analysis")
	fmt.Println("  scotland          Run the Scottish Parliament constituency analysis")
	fmt.Println("  household-impact  Join results to Census household counts")
	fmt.Println("  publish           Publish a results file to BigQuery")
	fmt.Println("  runs              List published runs, or read one back")
	fmt.Println("  sync-notion       Sync top constituencies to a Notion database")
	fmt.Println("  help              Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

// resolvePolicy picks a preset or loads a schedule file, with an optional
// override of the authoritative total.
func resolvePolicy(preset, policyPath, total string) (policy.Policy, error) {
	var p policy.Policy
	var err error
	if policyPath != "" {
		p, err = policy.Load(policyPath)
	} else {
		p, err = policy.Preset(preset)
	}
	if err != nil {
		return policy.Policy{}, err
	}
	if total != "" {
		t, err := decimal.NewFromString(total)
		if err != nil {
			return policy.Policy{}, fmt.Errorf("bad -total %q: %w", total, err)
		}
		p.AuthoritativeTotal = t
		p.TotalSource = "cli override"
	}
	return p, p.Validate()
}

func runAnalyze(log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	transactions := fs.String("transactions", "", "Price Paid CSV (local path or gs:// URI)")
	postcodes := fs.String("postcodes", "", "Postcode to constituency lookup CSV")
	constituencies := fs.String("constituencies", "", "Constituency registry CSV")
	outDir := fs.String("out", "out", "Output directory")
	preset := fs.String("preset", "uk-2025", "Policy preset (uk-2025, scotland-2028)")
	policyPath := fs.String("policy", "", "Policy JSON file (overrides -preset)")
	total := fs.String("total", "", "Override the authoritative revenue total")
	fs.Parse(os.Args[2:])

	if *transactions == "" || *postcodes == "" || *constituencies == "" {
		log.Fatal().Msg("Error: -transactions, -postcodes and -constituencies are required")
	}

	pol, err := resolvePolicy(*preset, *policyPath, *total)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid policy")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

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

func runScotland(log zerolog.Logger) {
	fs := flag.NewFlagSet("scotland", flag.ExitOnError)
	population := fs.String("population", "", "NRS constituency population CSV")
	wealthFactors := fs.String("wealth-factors", "", "Band H wealth factor CSV (optional)")
	out := fs.String("out", "scottish_constituency_estimates.csv", "Output CSV path")
	total := fs.String("total", "", "Authoritative revenue total (default: stock-based estimate)")
	govEstimate := fs.Bool("gov-estimate", false, "Use the Scottish Government £16m estimate")
	fs.Parse(os.Args[2:])

	if *population == "" {
		log.Fatal().Msg("Error: -population is required")
	}

	ctx := logger.WithContext(context.Background(), log)
	opener := storage.Service{}

	rc, err := opener.Open(ctx, *population)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open population file")
	}
	pops, err := scotland.LoadPopulations(rc)
	rc.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load population file")
	}

	factors := map[string]decimal.Decimal{}
	if *wealthFactors != "" {
		fc, err := opener.Open(ctx, *wealthFactors)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open wealth factor file")
		}
		factors, err = scotland.LoadWealthFactors(fc)
		fc.Close()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load wealth factor file")
		}
	} else {
		log.Warn().Msg("No wealth factor file supplied, using population-only weights")
	}

	authTotal := decimal.Zero
	switch {
	case *total != "":
		authTotal, err = decimal.NewFromString(*total)
		if err != nil {
			log.Fatal().Err(err).Str("total", *total).Msg("Bad -total value")
		}
	case *govEstimate:
		authTotal = policy.ScottishGovEstimatePolicy().AuthoritativeTotal
	}

	weights := scotland.ComputeWeights(pops, factors, log)
	analysis, err := scotland.Analyze(weights, authTotal, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Scottish analysis failed")
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output file")
	}
	defer f.Close()
	if err := report.WriteScottishEstimates(f, analysis.Estimates); err != nil {
		log.Fatal().Err(err).Msg("Failed to write estimates")
	}

	fmt.Printf("Wrote %d constituencies to %s (total revenue £%s)\n",
		len(analysis.Estimates), *out, analysis.TotalRevenue.StringFixed(0))
}

func runHouseholdImpact(log zerolog.Logger) {
	fs := flag.NewFlagSet("household-impact", flag.ExitOnError)
	resultsPath := fs.String("results", "", "Results CSV from a previous analyze run")
	householdsPath := fs.String("households", "", "Census TS003 household counts CSV")
	out := fs.String("out", "household_impact.csv", "Output CSV path")
	fs.Parse(os.Args[2:])

	if *resultsPath == "" || *householdsPath == "" {
		log.Fatal().Msg("Error: -results and -households are required")
	}

	results := readResultsFile(log, *resultsPath)

	hf, err := os.Open(*householdsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open households file")
	}
	households, err := census.LoadHouseholds(hf)
	hf.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load households file")
	}

	f, err := os.Create(*out)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create output file")
	}
	defer f.Close()
	if err := report.WriteHouseholdImpact(f, results, households); err != nil {
		log.Fatal().Err(err).Msg("Failed to write household impact")
	}

	fmt.Printf("Wrote household impact for %d constituencies to %s\n", len(results), *out)
}

func runPublish(log zerolog.Logger) {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	resultsPath := fs.String("results", "", "Results CSV from a previous analyze run")
	runID := fs.String("run-id", "", "Run ID to publish under")
	policyLabel := fs.String("policy-label", "", "Policy label recorded on the run row")
	project := fs.String("project", os.Getenv("SURCHARGE_BQ_PROJECT"), "GCP project ID")
	dataset := fs.String("dataset", "", "BigQuery dataset (default: surcharge)")
	fs.Parse(os.Args[2:])

	if *resultsPath == "" || *runID == "" {
		log.Fatal().Msg("Error: -results and -run-id are required")
	}
	if *project == "" {
		log.Fatal().Msg("Error: -project or SURCHARGE_BQ_PROJECT is required")
	}

	results := readResultsFile(log, *resultsPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	now := time.Now()
	if err := repo.InsertRun(ctx, bigquery.NewRunRow(model.RunSummary{
		RunID:       *runID,
		PolicyLabel: *policyLabel,
		StartedAt:   now,
	})); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert run row")
	}
	if err := repo.InsertResults(ctx, bigquery.NewResultRows(*runID, results, now)); err != nil {
		log.Fatal().Err(err).Msg("Failed to insert result rows")
	}

	fmt.Printf("Published %d constituencies for run %s\n", len(results), *runID)
}

func runRuns(log zerolog.Logger) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	project := fs.String("project", os.Getenv("SURCHARGE_BQ_PROJECT"), "GCP project ID")
	dataset := fs.String("dataset", "", "BigQuery dataset (default: surcharge)")
	runID := fs.String("run-id", "", "Print the constituency rows for this run")
	fs.Parse(os.Args[2:])

	if *project == "" {
		log.Fatal().Msg("Error: -project or SURCHARGE_BQ_PROJECT is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	repo, err := infraBQ.NewRepository(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize BigQuery repository")
	}
	defer repo.Close()

	if *runID != "" {
		rows, err := repo.QueryResultsByRun(ctx, *runID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to query run results")
		}
		fmt.Printf("Run %s: %d constituencies\n", *runID, len(rows))
		for _, row := range rows {
			fmt.Printf("  %-12s %-40s sales=%-5d allocated=£%s\n",
				row.ConstituencyID, row.Constituency, row.NumSales,
				row.AllocatedRevenue.FloatString(2))
		}
		return
	}

	runs, err := repo.ListRuns(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list runs")
	}
	for _, r := range runs {
		fmt.Printf("%s  %-14s started=%s matched=%d unmatched=%d\n",
			r.RunID, r.PolicyLabel, r.StartedTS.Format(time.RFC3339), r.Matched, r.Unmatched)
	}
}

func runSyncNotion(log zerolog.Logger) {
	fs := flag.NewFlagSet("sync-notion", flag.ExitOnError)
	resultsPath := fs.String("results", "", "Results CSV from a previous analyze run")
	runID := fs.String("run-id", "", "Run ID recorded on each page")
	notionToken := fs.String("notion-token", os.Getenv("NOTION_TOKEN"), "Notion API token")
	notionDBID := fs.String("notion-db-id", "", "Notion database ID")
	topN := fs.Int("top", 50, "Sync only the top N constituencies by allocated revenue (0 = all)")
	dryRun := fs.Bool("dry-run", false, "Preview changes without syncing")
	fs.Parse(os.Args[2:])

	if *resultsPath == "" {
		log.Fatal().Msg("Error: -results is required")
	}
	if *notionToken == "" {
		log.Fatal().Msg("Error: -notion-token or NOTION_TOKEN is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: -notion-db-id is required")
	}

	results := readResultsFile(log, *resultsPath)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	notionClient := notionsync.NewNotionClient(*notionToken)
	if err := notionsync.SyncResults(ctx, results, notionClient, *notionDBID, *runID, *topN, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Println("Sync completed successfully.")
}

func readResultsFile(log zerolog.Logger, path string) []model.ConstituencyResult {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to open results file")
	}
	defer f.Close()

	results, err := report.ReadResults(f)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to parse results file")
	}
	return results
}
