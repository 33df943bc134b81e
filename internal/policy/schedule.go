package policy

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// ErrBelowThreshold is returned by Classify for prices under the lowest band.
// It is not a record error; callers count these and move on.
var ErrBelowThreshold = errors.New("price below schedule threshold")

// Band is a contiguous price range with a flat annual surcharge rate.
// Intervals are half-open: [Lower, Upper). Upper == nil means open-ended.
type Band struct {
	Name  string           `json:"name"`
	Lower decimal.Decimal  `json:"lower"`
	Upper *decimal.Decimal `json:"upper,omitempty"`
	Rate  decimal.Decimal  `json:"rate"`
}

// Contains reports whether price falls inside the band's interval.
func (b Band) Contains(price decimal.Decimal) bool {
	if price.LessThan(b.Lower) {
		return false
	}
	if b.Upper == nil {
		return true
	}
	return price.LessThan(*b.Upper)
}

// Schedule is an ordered list of non-overlapping bands covering
// [threshold, ∞), where threshold is the lowest band's lower bound.
type Schedule struct {
	Label string `json:"label"`
	Bands []Band `json:"bands"`
}

// Threshold returns the lowest lower bound; prices under it attract no
// surcharge. Only meaningful after Validate.
func (s Schedule) Threshold() decimal.Decimal {
	if len(s.Bands) == 0 {
		return decimal.Zero
	}
	return s.Bands[0].Lower
}

// Validate checks the schedule once at startup. Any failure is a
// configuration error and aborts the run; Classify assumes a valid schedule.
func (s Schedule) Validate() error {
	if len(s.Bands) == 0 {
		return model.Configf("schedule %q has no bands", s.Label)
	}
	for i, b := range s.Bands {
		if b.Rate.Sign() <= 0 {
			return model.Configf("schedule %q: band %q has non-positive rate %s", s.Label, b.Name, b.Rate)
		}
		if b.Lower.Sign() < 0 {
			return model.Configf("schedule %q: band %q has negative lower bound", s.Label, b.Name)
		}
		if b.Upper != nil && !b.Lower.LessThan(*b.Upper) {
			return model.Configf("schedule %q: band %q is empty (lower %s >= upper %s)", s.Label, b.Name, b.Lower, *b.Upper)
		}
		if i < len(s.Bands)-1 {
			next := s.Bands[i+1]
			if b.Upper == nil {
				return model.Configf("schedule %q: band %q is open-ended but not last", s.Label, b.Name)
			}
			// Bands must tile the range: each upper bound is the next lower bound.
			if !b.Upper.Equal(next.Lower) {
				return model.Configf("schedule %q: gap or overlap between bands %q and %q (%s != %s)",
					s.Label, b.Name, next.Name, *b.Upper, next.Lower)
			}
		}
	}
	if s.Bands[len(s.Bands)-1].Upper != nil {
		return model.Configf("schedule %q: last band must be open-ended", s.Label)
	}
	return nil
}

// Classify returns the band containing price. Boundaries belong to the higher
// band. Returns ErrBelowThreshold for prices under the lowest band and a
// ConfigError for negative prices, which indicate the caller skipped record
// validation.
func (s Schedule) Classify(price decimal.Decimal) (Band, error) {
	if price.Sign() < 0 {
		return Band{}, model.Configf("cannot classify negative price %s", price)
	}
	if price.LessThan(s.Threshold()) {
		return Band{}, ErrBelowThreshold
	}
	for _, b := range s.Bands {
		if b.Contains(price) {
			return b, nil
		}
	}
	// Unreachable for a validated schedule: the last band is open-ended.
	return Band{}, model.Configf("no band matches price %s in schedule %q", price, s.Label)
}

func mustDecimal(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func decimalPtr(v string) *decimal.Decimal {
	d := mustDecimal(v)
	return &d
}

// UKSurcharge2025 is the high value council tax surcharge announced in the
// November 2025 Budget: properties above £2m, four rate bands.
func UKSurcharge2025() Schedule {
	return Schedule{
		Label: "uk-surcharge-2025",
		Bands: []Band{
			{Name: "2m-2.5m", Lower: mustDecimal("2000000"), Upper: decimalPtr("2500000"), Rate: mustDecimal("2500")},
			{Name: "2.5m-3m", Lower: mustDecimal("2500000"), Upper: decimalPtr("3000000"), Rate: mustDecimal("3500")},
			{Name: "3m-5m", Lower: mustDecimal("3000000"), Upper: decimalPtr("5000000"), Rate: mustDecimal("5000")},
			{Name: "5m+", Lower: mustDecimal("5000000"), Upper: nil, Rate: mustDecimal("7500")},
		},
	}
}

// ScottishBands2028 models the proposed council tax bands for £1m+ properties
// from the Scottish Budget 2025-26, effective April 2028. Scotland has not
// announced rates; these are the UK surcharge benchmark rates.
func ScottishBands2028() Schedule {
	return Schedule{
		Label: "scotland-bands-2028",
		Bands: []Band{
			{Name: "Band I", Lower: mustDecimal("1000000"), Upper: decimalPtr("2000000"), Rate: mustDecimal("1500")},
			{Name: "Band J", Lower: mustDecimal("2000000"), Upper: nil, Rate: mustDecimal("2500")},
		},
	}
}
