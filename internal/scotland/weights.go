package scotland

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// Weight is a constituency's share of its council's sales, derived from
// population scaled by a Band H wealth factor.
type Weight struct {
	Constituency string
	Council      string
	Population   int
	WealthFactor decimal.Decimal
	Share        decimal.Decimal
}

// LoadPopulations reads the NRS constituency population CSV
// (constituency,population header).
func LoadPopulations(r io.Reader) (map[string]int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read population header: %w", err)
	}
	nameCol, popCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "constituency":
			nameCol = i
		case "population":
			popCol = i
		}
	}
	if nameCol < 0 || popCol < 0 {
		return nil, model.Configf("population file missing constituency/population columns")
	}

	pops := make(map[string]int)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read population row: %w", err)
		}
		if len(rec) <= popCol {
			continue
		}
		pop, err := strconv.Atoi(strings.TrimSpace(rec[popCol]))
		if err != nil || pop <= 0 {
			continue
		}
		pops[strings.TrimSpace(rec[nameCol])] = pop
	}
	if len(pops) == 0 {
		return nil, model.Configf("population file contains no usable rows")
	}
	return pops, nil
}

// LoadWealthFactors reads per-constituency wealth factors (constituency Band H
// share divided by the Scotland-wide share) from a CSV with
// constituency,wealth_factor columns. Constituencies absent from the file fall
// back to a factor of 1.0, i.e. population-only weighting.
func LoadWealthFactors(r io.Reader) (map[string]decimal.Decimal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read wealth factor header: %w", err)
	}
	nameCol, factorCol := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "constituency":
			nameCol = i
		case "wealth_factor":
			factorCol = i
		}
	}
	if nameCol < 0 || factorCol < 0 {
		return nil, model.Configf("wealth factor file missing constituency/wealth_factor columns")
	}

	factors := make(map[string]decimal.Decimal)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read wealth factor row: %w", err)
		}
		if len(rec) <= factorCol {
			continue
		}
		f, err := decimal.NewFromString(strings.TrimSpace(rec[factorCol]))
		if err != nil || f.IsNegative() {
			continue
		}
		factors[strings.TrimSpace(rec[nameCol])] = f
	}
	return factors, nil
}

// ComputeWeights derives the within-council share for every constituency in
// the reference mapping. The share is population times wealth factor,
// normalized so shares within each council sum to 1. Missing populations use
// DefaultPopulation; missing wealth factors use 1.0.
func ComputeWeights(pops map[string]int, factors map[string]decimal.Decimal, log zerolog.Logger) map[string]Weight {
	one := decimal.NewFromInt(1)

	byCouncil := make(map[string][]Weight)
	for constituency, council := range ConstituencyCouncil {
		pop, ok := pops[constituency]
		if !ok {
			pop = DefaultPopulation
			log.Warn().
				Str("constituency", constituency).
				Int("default_population", DefaultPopulation).
				Msg("No population data for constituency")
		}
		factor, ok := factors[constituency]
		if !ok {
			factor = one
		}
		byCouncil[council] = append(byCouncil[council], Weight{
			Constituency: constituency,
			Council:      council,
			Population:   pop,
			WealthFactor: factor,
		})
	}

	weights := make(map[string]Weight, len(ConstituencyCouncil))
	for _, members := range byCouncil {
		total := decimal.Zero
		adjusted := make([]decimal.Decimal, len(members))
		for i, m := range members {
			adjusted[i] = decimal.NewFromInt(int64(m.Population)).Mul(m.WealthFactor)
			total = total.Add(adjusted[i])
		}
		for i, m := range members {
			if total.IsPositive() {
				m.Share = adjusted[i].Div(total)
			} else {
				m.Share = one.Div(decimal.NewFromInt(int64(len(members))))
			}
			weights[m.Constituency] = m
		}
	}
	return weights
}
