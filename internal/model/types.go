package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is one property sale from the Land Registry Price Paid dataset.
// Records are immutable once loaded; the pipeline never mutates them.
type Transaction struct {
	TransactionID string
	Price         decimal.Decimal
	Postcode      string
	SaleDate      civil.Date
}

// GeocodedTransaction is a transaction joined to its constituency via the
// postcode lookup.
type GeocodedTransaction struct {
	Transaction
	ConstituencyID string
}

// ConstituencyAggregate holds per-constituency sale statistics and the
// surcharge revenue implied directly by observed sales, before rescaling.
type ConstituencyAggregate struct {
	ConstituencyID string
	Name           string
	Count          int
	TotalValue     decimal.Decimal
	MeanPrice      decimal.Decimal
	MedianPrice    decimal.Decimal
	ImpliedRevenue decimal.Decimal

	// BandCounts maps band name to the number of sales classified into it.
	BandCounts map[string]int
}

// ConstituencyResult is an aggregate with its allocated share of the
// authoritative revenue total.
type ConstituencyResult struct {
	ConstituencyAggregate

	// AllocatedRevenue = ImpliedRevenue × (authoritative total / Σ implied).
	AllocatedRevenue decimal.Decimal

	// ShareOfTotal is a fraction in [0, 1]; shares sum to 1 across results.
	ShareOfTotal decimal.Decimal
}
