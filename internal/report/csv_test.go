package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

func sampleResults() []model.ConstituencyResult {
	return []model.ConstituencyResult{
		{
			ConstituencyAggregate: model.ConstituencyAggregate{
				ConstituencyID: "E14001172",
				Name:           "Cities of London and Westminster",
				Count:          3,
				MeanPrice:      decimal.NewFromFloat(3566666.67),
				MedianPrice:    decimal.NewFromInt(2_600_000),
				TotalValue:     decimal.NewFromInt(10_700_000),
				ImpliedRevenue: decimal.NewFromInt(13500),
			},
			AllocatedRevenue: decimal.NewFromFloat(291891891.89),
			ShareOfTotal:     decimal.NewFromFloat(0.729730),
		},
		{
			ConstituencyAggregate: model.ConstituencyAggregate{
				ConstituencyID: "E14000001",
				Name:           "Elsewhere",
			},
		},
	}
}

func TestWriteReadResultsRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteResults(&buf, sampleResults()); err != nil {
		t.Fatalf("WriteResults failed: %v", err)
	}

	got, err := ReadResults(&buf)
	if err != nil {
		t.Fatalf("ReadResults failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}

	r := got[0]
	if r.ConstituencyID != "E14001172" || r.Count != 3 {
		t.Errorf("first row = %+v", r)
	}
	if !r.ImpliedRevenue.Equal(decimal.NewFromInt(13500)) {
		t.Errorf("implied = %s, want 13500", r.ImpliedRevenue)
	}
	if !r.ShareOfTotal.Equal(decimal.NewFromFloat(0.729730)) {
		t.Errorf("share = %s, want 0.729730", r.ShareOfTotal)
	}
	if zero := got[1]; !zero.AllocatedRevenue.IsZero() || zero.Count != 0 {
		t.Errorf("zero-sale row = %+v", zero)
	}
}

func TestReadResultsRejectsBadHeader(t *testing.T) {
	if _, err := ReadResults(strings.NewReader("a,b,c\n")); err == nil {
		t.Fatal("expected error for unexpected header")
	}
}

func TestWriteRunSummary(t *testing.T) {
	var buf bytes.Buffer
	s := model.RunSummary{
		RunID:          "run-7",
		PolicyLabel:    "uk-2025",
		Loaded:         10,
		Matched:        8,
		Unmatched:      2,
		Malformed:      1,
		BelowThreshold: 4,
		Duration:       2 * time.Second,
	}
	if err := WriteRunSummary(&buf, s); err != nil {
		t.Fatalf("WriteRunSummary failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"run-7", "uk-2025", "2000"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q: %s", want, out)
		}
	}
}

func TestWriteHouseholdImpact(t *testing.T) {
	var buf bytes.Buffer
	results := sampleResults()
	households := map[string]int{
		"E14001172": 54000,
		// E14000001 intentionally absent.
	}

	if err := WriteHouseholdImpact(&buf, results, households); err != nil {
		t.Fatalf("WriteHouseholdImpact failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row", len(lines))
	}
	// 3 of 54000 households = 0.006%; average surcharge 13500/3 = 4500.
	if !strings.Contains(lines[1], "0.006") || !strings.Contains(lines[1], "4500.00") {
		t.Errorf("unexpected impact row: %s", lines[1])
	}
}
