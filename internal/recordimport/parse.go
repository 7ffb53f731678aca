// Package recordimport loads submissions that were kept in a spreadsheet
// before the service existed, so their application numbers stay unique.
package recordimport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EmpoweredVote/dtr-indexing/internal/hierarchy"
	"github.com/EmpoweredVote/dtr-indexing/internal/record"
)

// ReadFile reads a records sheet from .csv or .xlsx. The first row must be
// the header; Zone and "MSN (New)" may be missing.
func ReadFile(path, sheet string) ([]record.Record, error) {
	rows, err := hierarchy.ReadRows(path, sheet)
	if err != nil {
		return nil, err
	}
	return Parse(rows)
}

func canon(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

var optional = map[string]bool{"zone": true, "msn (new)": true}

// Parse maps rows under a records header to records. Sequence, ID and
// CreatedAt are left for the store.
func Parse(rows [][]string) ([]record.Record, error) {
	if len(rows) < 2 {
		return nil, errors.New("sheet has no data rows")
	}

	col := map[string]int{}
	for i, h := range rows[0] {
		col[canon(h)] = i
	}
	for _, name := range record.Columns() {
		if _, ok := col[canon(name)]; !ok && !optional[canon(name)] {
			return nil, fmt.Errorf("missing required column: %s", name)
		}
	}

	seen := map[string]bool{}
	var out []record.Record
	for rowIdx := 1; rowIdx < len(rows); rowIdx++ {
		raw := rows[rowIdx]
		get := func(name string) string {
			i, ok := col[canon(name)]
			if !ok || i >= len(raw) {
				return ""
			}
			return strings.TrimSpace(raw[i])
		}

		if blank(raw) {
			continue
		}
		app := get("Application Number")
		if app == "" {
			return nil, fmt.Errorf("row %d: application number is required", rowIdx+1)
		}
		if seen[app] {
			return nil, fmt.Errorf("row %d: duplicate application number %q", rowIdx+1, app)
		}
		seen[app] = true

		rec := record.Record{
			ApplicationNumber: app,
			Region:            get("Region"),
			Circle:            get("Circle"),
			Division:          get("Division"),
			Zone:              get("Zone"),
			Substation:        get("Sub station"),
			Feeder:            get("Feeder"),
			DTR:               get("Dtr"),
			DTRCode:           get("Dtr code"),
			FeederCode:        get("Feeder code"),
			MSNAuto:           get("MSN (MDM)"),
			MSNOverride:       get("MSN (New)"),
			MSNFinal:          get("Final MSN"),
			OffTime:           clock(get("DTR Off Time")),
			OnTime:            clock(get("DTR On Time")),
			EventDate:         get("Date"),
			OfficerName:       get("AE/JE Name"),
			Mobile:            get("Mobile Number"),
		}
		if rec.MSNFinal == "" {
			rec.MSNFinal = rec.MSNAuto
			if rec.MSNOverride != "" {
				rec.MSNFinal = rec.MSNOverride
			}
		}
		if d, err := record.ParseDate(rec.EventDate); err == nil {
			rec.EventDate = record.FormatDate(d)
			rec.SubmittedAt = d
		} else {
			rec.SubmittedAt = time.Now()
		}
		for _, v := range []string{rec.Region, rec.Circle, rec.Division, rec.Zone, rec.Substation,
			rec.Feeder, rec.DTR, rec.DTRCode, rec.FeederCode, rec.MSNAuto} {
			if v != "" {
				rec.Path = append(rec.Path, v)
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// clock normalises a time cell, keeping it as written when it does not parse.
func clock(s string) string {
	if c, err := record.ParseClock(s); err == nil {
		return c.String()
	}
	return s
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
