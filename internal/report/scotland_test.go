package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/scotland"
)

func TestWriteScottishEstimates(t *testing.T) {
	var buf bytes.Buffer
	estimates := []scotland.Estimate{
		{
			Constituency:     "Edinburgh Central",
			Council:          "City of Edinburgh",
			Population:       92000,
			WealthFactor:     decimal.NewFromFloat(4.85),
			Weight:           decimal.NewFromFloat(0.31),
			EstimatedSales:   decimal.NewFromFloat(62.1),
			BandISales:       decimal.NewFromFloat(55.4),
			BandJSales:       decimal.NewFromFloat(6.7),
			ImpliedRevenue:   decimal.NewFromInt(99820),
			AllocatedRevenue: decimal.NewFromInt(2_931_000),
			ShareOfTotal:     decimal.NewFromFloat(0.158824),
		},
	}

	if err := WriteScottishEstimates(&buf, estimates); err != nil {
		t.Fatalf("WriteScottishEstimates failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "constituency,council,population") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	for _, want := range []string{"Edinburgh Central", "4.85", "62.1", "2931000", "0.158824"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("row missing %q: %s", want, lines[1])
		}
	}
}
