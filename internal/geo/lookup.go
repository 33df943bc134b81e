// Package geo joins property transactions to constituencies using the ONS
// National Statistics Postcode Lookup (NSPL) and the Westminster constituency
// names and codes reference file.
package geo

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
)

// NormalizePostcode canonicalises a postcode for lookup: uppercase, trimmed,
// inner whitespace collapsed to a single space ("sw1a1aa " and "SW1A 1AA"
// both normalize to the NSPL pcds form when the space is present).
func NormalizePostcode(s string) string {
	fields := strings.Fields(strings.ToUpper(s))
	return strings.Join(fields, " ")
}

// PostcodeIndex maps normalized unit postcodes to constituency codes.
type PostcodeIndex struct {
	byPostcode map[string]string
}

// LoadPostcodeIndex reads an NSPL extract. The file must have a header row
// naming a postcode column ("pcds") and a constituency column ("pcon"); rows
// with an empty constituency (terminated or non-geographic postcodes) are
// skipped, matching how the source data marks them.
func LoadPostcodeIndex(r io.Reader) (*PostcodeIndex, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read NSPL header: %w", err)
	}
	pcdsCol, pconCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "pcds":
			pcdsCol = i
		case "pcon":
			pconCol = i
		}
	}
	if pcdsCol < 0 || pconCol < 0 {
		return nil, fmt.Errorf("NSPL header missing pcds/pcon columns: %v", header)
	}

	idx := &PostcodeIndex{byPostcode: make(map[string]string)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read NSPL row: %w", err)
		}
		if pcdsCol >= len(rec) || pconCol >= len(rec) {
			continue
		}
		pcon := strings.TrimSpace(rec[pconCol])
		if pcon == "" {
			continue
		}
		idx.byPostcode[NormalizePostcode(rec[pcdsCol])] = pcon
	}
	return idx, nil
}

// Lookup returns the constituency code for a postcode, normalizing first.
func (ix *PostcodeIndex) Lookup(postcode string) (string, bool) {
	code, ok := ix.byPostcode[NormalizePostcode(postcode)]
	return code, ok
}

// Len returns the number of indexed postcodes.
func (ix *PostcodeIndex) Len() int { return len(ix.byPostcode) }

// Registry is the reference geography: the set of constituencies that must
// appear in every output, with their display names. Constituencies with zero
// matched sales still get a row.
type Registry struct {
	names map[string]string
}

// LoadRegistry reads the constituency names and codes CSV (columns PCON24CD
// and PCON24NM, located by header name; falls back to the first two columns
// for older extracts).
func LoadRegistry(r io.Reader) (*Registry, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read registry header: %w", err)
	}
	codeCol, nameCol := 0, 1
	for i, name := range header {
		switch strings.ToUpper(strings.TrimSpace(name)) {
		case "PCON24CD":
			codeCol = i
		case "PCON24NM":
			nameCol = i
		}
	}

	reg := &Registry{names: make(map[string]string)}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read registry row: %w", err)
		}
		if codeCol >= len(rec) || nameCol >= len(rec) {
			continue
		}
		code := strings.TrimSpace(rec[codeCol])
		if code == "" {
			continue
		}
		reg.names[code] = strings.TrimSpace(rec[nameCol])
	}
	if len(reg.names) == 0 {
		return nil, fmt.Errorf("registry contains no constituencies")
	}
	return reg, nil
}

// Name returns the display name for a constituency code.
func (r *Registry) Name(code string) (string, bool) {
	name, ok := r.names[code]
	return name, ok
}

// Codes returns all constituency codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.names))
	for code := range r.names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of constituencies in the reference geography.
func (r *Registry) Len() int { return len(r.names) }
