package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ewaddington/surcharge-atlas/internal/scotland"
)

// WriteScottishEstimates writes the Scottish constituency table. Sales counts
// are fractional because they are distributed council estimates, not observed
// transactions.
func WriteScottishEstimates(w io.Writer, estimates []scotland.Estimate) error {
	cw := csv.NewWriter(w)
	header := []string{
		"constituency", "council", "population", "wealth_factor", "weight",
		"estimated_sales", "band_i_sales", "band_j_sales",
		"implied_revenue", "allocated_revenue", "share_of_total",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write scottish estimates header: %w", err)
	}
	for _, e := range estimates {
		row := []string{
			e.Constituency,
			e.Council,
			strconv.Itoa(e.Population),
			e.WealthFactor.StringFixed(2),
			e.Weight.StringFixed(4),
			e.EstimatedSales.StringFixed(1),
			e.BandISales.StringFixed(1),
			e.BandJSales.StringFixed(1),
			e.ImpliedRevenue.StringFixed(0),
			e.AllocatedRevenue.StringFixed(0),
			e.ShareOfTotal.StringFixed(6),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write scottish estimates row for %s: %w", e.Constituency, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
