// Package census loads household counts per constituency from a prepared
// extract of the Census 2021 TS003 dataset (constituency_code,
// constituency_name, total_households).
package census

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// LoadHouseholds reads the extract and returns constituency code → household
// count. Columns are located by header name with a positional fallback.
func LoadHouseholds(r io.Reader) (map[string]int, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read households header: %w", err)
	}
	codeCol, countCol := 0, len(header)-1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "constituency_code":
			codeCol = i
		case "total_households":
			countCol = i
		}
	}

	households := make(map[string]int)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read households row: %w", err)
		}
		if codeCol >= len(rec) || countCol >= len(rec) {
			continue
		}
		code := strings.TrimSpace(rec[codeCol])
		if code == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(rec[countCol]))
		if err != nil {
			return nil, fmt.Errorf("bad household count %q for %s: %w", rec[countCol], code, err)
		}
		households[code] = n
	}
	if len(households) == 0 {
		return nil, fmt.Errorf("household extract contains no rows")
	}
	return households, nil
}
