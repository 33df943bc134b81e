package model

import "time"

// RunSummary reports what one pipeline run saw. The exclusion tallies are part
// of the published output: records are never silently dropped, they are
// counted here.
type RunSummary struct {
	RunID       string
	PolicyLabel string

	Loaded         int
	Matched        int
	Unmatched      int
	Malformed      int
	BelowThreshold int

	StartedAt time.Time
	Duration  time.Duration
}
