// Package seeds builds a sample reference workbook for local runs and demos.
package seeds

import (
	"fmt"

	"github.com/EmpoweredVote/dtr-indexing/internal/hierarchy"
	"github.com/xuri/excelize/v2"
)

// Header is the sample workbook header, in the order the master sheets use.
var Header = []string{
	"Region", "Circle", "Division", "Zone", "Sub station", "Feeder",
	"Dtr", "Dtr code", "Feeder code", "Msn",
}

// Shape sets how many children each level fans out to.
type Shape struct {
	Regions, Circles, Divisions, Substations, Feeders, DTRs int
}

var DefaultShape = Shape{Regions: 2, Circles: 2, Divisions: 2, Substations: 2, Feeders: 2, DTRs: 3}

// SampleRows returns one row per DTR. Names are unique per parent, and every
// DTR gets its own code and meter serial.
func SampleRows(s Shape) [][]string {
	regions := []string{"North", "South", "East", "West", "Central"}
	var rows [][]string
	n := 0
	for r := 0; r < s.Regions; r++ {
		region := regions[r%len(regions)]
		for c := 1; c <= s.Circles; c++ {
			circle := fmt.Sprintf("%s Circle %d", region, c)
			for d := 1; d <= s.Divisions; d++ {
				division := fmt.Sprintf("%s Division %d-%d", region, c, d)
				zone := fmt.Sprintf("Zone %c", 'A'+rune(d-1))
				for ss := 1; ss <= s.Substations; ss++ {
					sub := fmt.Sprintf("33/11 KV SS %s-%d%d%d", region[:1], c, d, ss)
					for f := 1; f <= s.Feeders; f++ {
						feeder := fmt.Sprintf("%s F%d", sub, f)
						feederCode := fmt.Sprintf("FDR%s%d%d%d%d", region[:1], c, d, ss, f)
						for t := 1; t <= s.DTRs; t++ {
							n++
							rows = append(rows, []string{
								region, circle, division, zone, sub, feeder,
								fmt.Sprintf("DTR %s/%d", feederCode, t),
								fmt.Sprintf("DT%06d", n),
								feederCode,
								fmt.Sprintf("MSN%08d", n),
							})
						}
					}
				}
			}
		}
	}
	return rows
}

// WriteReferenceWorkbook saves rows under Header to an .xlsx file.
func WriteReferenceWorkbook(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := f.SetSheetRow(sheet, "A1", &Header); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}
	return f.SaveAs(path)
}

// Check loads a written workbook back the way the server does.
func Check(path string) (*hierarchy.Table, error) {
	return hierarchy.Load(path, hierarchy.LoadOptions{})
}
