package policy

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// Policy bundles a band schedule with the externally supplied authoritative
// revenue total it should be rescaled to. Revenue totals differ across
// government revisions (£400m OBR for the UK surcharge; £16m/£18.5m for the
// Scottish reform), so they are configuration, never constants in the
// pipeline.
type Policy struct {
	Schedule           Schedule        `json:"schedule"`
	AuthoritativeTotal decimal.Decimal `json:"authoritative_total"`
	TotalSource        string          `json:"total_source,omitempty"`
}

// Validate checks the schedule and total once at startup.
func (p Policy) Validate() error {
	if err := p.Schedule.Validate(); err != nil {
		return err
	}
	if p.AuthoritativeTotal.Sign() <= 0 {
		return model.Configf("policy %q: authoritative total must be positive, got %s",
			p.Schedule.Label, p.AuthoritativeTotal)
	}
	return nil
}

// Load reads a policy from a JSON file.
func Load(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file %q: %w", path, err)
	}
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("parse policy file %q: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// UKSurcharge2025Policy is the UK surcharge with the £400m OBR costing from
// the November 2025 Budget.
func UKSurcharge2025Policy() Policy {
	return Policy{
		Schedule:           UKSurcharge2025(),
		AuthoritativeTotal: mustDecimal("400000000"),
		TotalSource:        "OBR November 2025",
	}
}

// ScottishGovEstimatePolicy is the Scottish bands with the Scottish
// Government's £16m estimate from the 2025-26 Budget.
func ScottishGovEstimatePolicy() Policy {
	return Policy{
		Schedule:           ScottishBands2028(),
		AuthoritativeTotal: mustDecimal("16000000"),
		TotalSource:        "Scottish Government Budget 2025-26",
	}
}

// Preset resolves a named built-in policy.
func Preset(name string) (Policy, error) {
	switch name {
	case "uk-2025":
		return UKSurcharge2025Policy(), nil
	case "scotland-2028":
		return ScottishGovEstimatePolicy(), nil
	default:
		return Policy{}, model.Configf("unknown policy preset %q (want uk-2025 or scotland-2028)", name)
	}
}
