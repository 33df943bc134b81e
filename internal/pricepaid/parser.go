// Package pricepaid parses HM Land Registry Price Paid Data, the transaction
// record of every registered property sale in England and Wales.
package pricepaid

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ewaddington/surcharge-atlas/internal/model"
)

// Price Paid files are headerless CSV with sixteen columns.
const (
	colTransactionID = 0
	colPrice         = 1
	colDate          = 2
	colPostcode      = 3

	minColumns = 4
)

// The date column carries a trailing midnight time in most vintages of the
// dataset ("2024-03-15 00:00").
var dateLayouts = []string{"2006-01-02 15:04", "2006-01-02"}

// Result is the outcome of one parse pass: the retained transactions plus the
// exclusion tallies the run reports alongside its aggregates.
type Result struct {
	Transactions []model.Transaction

	// Malformed counts records with a non-numeric or negative price, an
	// unparsable date, or too few columns. Excluded, never fatal.
	Malformed int

	// BelowThreshold counts well-formed sales under the schedule threshold.
	BelowThreshold int
}

// Parse reads Price Paid records from r, keeping sales at or above threshold.
// Record-level problems are tallied and logged at debug level; only I/O and
// CSV framing errors abort the parse.
func Parse(r io.Reader, threshold decimal.Decimal, log zerolog.Logger) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	res := &Result{}
	line := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read price paid row %d: %w", line+1, err)
		}
		line++

		if len(rec) < minColumns {
			res.Malformed++
			log.Debug().Int("line", line).Int("columns", len(rec)).Msg("Skipping short record")
			continue
		}

		price, err := decimal.NewFromString(strings.TrimSpace(rec[colPrice]))
		if err != nil || price.Sign() < 0 {
			res.Malformed++
			log.Debug().Int("line", line).Str("price", rec[colPrice]).Msg("Skipping record with bad price")
			continue
		}

		saleDate, err := parseDate(rec[colDate])
		if err != nil {
			res.Malformed++
			log.Debug().Int("line", line).Str("date", rec[colDate]).Msg("Skipping record with bad date")
			continue
		}

		if price.LessThan(threshold) {
			res.BelowThreshold++
			continue
		}

		res.Transactions = append(res.Transactions, model.Transaction{
			TransactionID: strings.Trim(strings.TrimSpace(rec[colTransactionID]), "{}"),
			Price:         price,
			Postcode:      strings.TrimSpace(rec[colPostcode]),
			SaleDate:      saleDate,
		})
	}

	log.Info().
		Int("kept", len(res.Transactions)).
		Int("below_threshold", res.BelowThreshold).
		Int("malformed", res.Malformed).
		Msg("Parsed price paid data")

	return res, nil
}

func parseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("unparsable date %q", s)
}
