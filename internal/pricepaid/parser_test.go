package pricepaid

import (
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const sampleRows = `"{A1B2C3}","2100000","2024-03-15 00:00","SW1A 1AA","D","N","F","1","","WHITEHALL","","LONDON","WESTMINSTER","GREATER LONDON","A","A"
"{D4E5F6}","2600000","2024-06-01 00:00","W8 5BU","T","N","F","12","","PHILLIMORE GARDENS","","LONDON","KENSINGTON","GREATER LONDON","A","A"
"{G7H8I9}","6000000","2024-11-20 00:00","SW3 1AB","D","N","F","3","","CADOGAN SQUARE","","LONDON","KENSINGTON","GREATER LONDON","A","A"
"{J1K2L3}","450000","2024-02-02 00:00","LS1 4AP","S","N","L","9","","PARK ROW","","LEEDS","LEEDS","WEST YORKSHIRE","A","A"
"{M4N5O6}","not-a-price","2024-02-02 00:00","M1 1AE","S","N","L","9","","OXFORD RD","","MANCHESTER","MANCHESTER","GREATER MANCHESTER","A","A"
"{P7Q8R9}","-50","2024-02-02 00:00","B1 1AA","S","N","L","9","","NEW ST","","BIRMINGHAM","BIRMINGHAM","WEST MIDLANDS","A","A"
"{S1T2U3}","3000000","Febtober","NW3 1AA","D","N","F","2","","FROGNAL","","LONDON","CAMDEN","GREATER LONDON","A","A"
`

func TestParse(t *testing.T) {
	threshold := decimal.NewFromInt(2_000_000)
	res, err := Parse(strings.NewReader(sampleRows), threshold, zerolog.Nop())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(res.Transactions) != 3 {
		t.Fatalf("kept %d transactions, want 3", len(res.Transactions))
	}
	if res.BelowThreshold != 1 {
		t.Errorf("BelowThreshold = %d, want 1", res.BelowThreshold)
	}
	// non-numeric price, negative price, bad date
	if res.Malformed != 3 {
		t.Errorf("Malformed = %d, want 3", res.Malformed)
	}

	first := res.Transactions[0]
	if first.TransactionID != "A1B2C3" {
		t.Errorf("TransactionID = %q, want braces stripped A1B2C3", first.TransactionID)
	}
	if !first.Price.Equal(decimal.NewFromInt(2_100_000)) {
		t.Errorf("Price = %s, want 2100000", first.Price)
	}
	if first.Postcode != "SW1A 1AA" {
		t.Errorf("Postcode = %q, want SW1A 1AA", first.Postcode)
	}
	want := civil.Date{Year: 2024, Month: 3, Day: 15}
	if first.SaleDate != want {
		t.Errorf("SaleDate = %v, want %v", first.SaleDate, want)
	}
}

func TestParseDateWithoutTime(t *testing.T) {
	d, err := parseDate("2024-01-05")
	if err != nil {
		t.Fatalf("parseDate failed: %v", err)
	}
	if d != (civil.Date{Year: 2024, Month: 1, Day: 5}) {
		t.Errorf("parseDate = %v", d)
	}
}

func TestParseShortRecordTallied(t *testing.T) {
	res, err := Parse(strings.NewReader("\"{X}\",\"100\"\n"), decimal.Zero, zerolog.Nop())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Malformed != 1 || len(res.Transactions) != 0 {
		t.Errorf("Malformed = %d, kept = %d; want 1 and 0", res.Malformed, len(res.Transactions))
	}
}

func TestParseEmptyInput(t *testing.T) {
	res, err := Parse(strings.NewReader(""), decimal.Zero, zerolog.Nop())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(res.Transactions) != 0 || res.Malformed != 0 || res.BelowThreshold != 0 {
		t.Errorf("unexpected result for empty input: %+v", res)
	}
}
