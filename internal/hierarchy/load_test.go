package hierarchy_test

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/EmpoweredVote/dtr-indexing/internal/hierarchy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var masterHeader = []string{"Region", "Circle", "Division", "Sub station", "Feeder", "Dtr", "Dtr code", "Feeder code", "Msn"}

// writeWorkbook saves header and rows to a fresh workbook in a temp dir.
func writeWorkbook(t *testing.T, header []string, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	all := append([][]string{header}, rows...)
	for i, r := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		vals := make([]interface{}, len(r))
		for j, v := range r {
			vals[j] = v
		}
		require.NoError(t, f.SetSheetRow(sheet, cell, &vals))
	}

	path := filepath.Join(t.TempDir(), "master.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "master.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func TestLoad_Workbook(t *testing.T) {
	path := writeWorkbook(t, masterHeader, fixtureRows)

	tbl, err := hierarchy.Load(path, hierarchy.LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, len(fixtureRows), tbl.Len())
	assert.Equal(t, hierarchy.DefaultChain(), tbl.Chain())
	assert.Equal(t, []string{"North", "South"}, tbl.Candidates(nil))
}

func TestLoad_WorkbookWithZoneColumn(t *testing.T) {
	header := []string{"Region", "Circle", "Division", "Zone", "Sub station", "Feeder", "Dtr", "Dtr code", "Feeder code", "Msn"}
	path := writeWorkbook(t, header, [][]string{
		{"North", "C1", "D1", "Z1", "S1", "F1", "T1", "DC1", "FC1", "MSN001"},
		{"North", "C1", "D1", "Z2", "S2", "F2", "T2", "DC2", "FC2", "MSN002"},
	})

	tbl, err := hierarchy.Load(path, hierarchy.LoadOptions{})
	require.NoError(t, err)
	require.True(t, tbl.Chain().Has(hierarchy.Zone))

	got := tbl.CandidatesFor(hierarchy.Zone, []hierarchy.Filter{
		{Level: hierarchy.Region, Value: "North"},
		{Level: hierarchy.Circle, Value: "C1"},
		{Level: hierarchy.Division, Value: "D1"},
	})
	assert.Equal(t, []string{"Z1", "Z2"}, got)
}

func TestFromRecords_BlankZoneResolvesAsPassThrough(t *testing.T) {
	header := []string{"Region", "Circle", "Division", "Zone", "Sub station", "Feeder", "Dtr", "Dtr code", "Feeder code", "Msn"}
	tbl, err := hierarchy.FromRecords([][]string{
		header,
		{"North", "C1", "D1", "Z1", "S1", "F1", "T1", "DC1", "FC1", "MSN001"},
		{"North", "C1", "D2", "", "S2", "F2", "T2", "DC2", "FC2", "MSN002"},
	}, hierarchy.DefaultSchema())
	require.NoError(t, err)

	p := tbl.Resolve(map[hierarchy.Level]string{
		hierarchy.Region: "North", hierarchy.Circle: "C1", hierarchy.Division: "D2",
		hierarchy.Substation: "S2", hierarchy.Feeder: "F2", hierarchy.DTR: "T2",
		hierarchy.DTRCode: "DC2", hierarchy.FeederCode: "FC2", hierarchy.MSN: "MSN002",
	})
	require.True(t, p.Complete())
	zone, ok := p.Value(hierarchy.Zone)
	assert.True(t, ok)
	assert.Empty(t, zone)
	assert.Empty(t, p.Candidates(hierarchy.Zone))

	// A division whose rows all carry a zone still needs one picked.
	p = tbl.Resolve(map[hierarchy.Level]string{
		hierarchy.Region: "North", hierarchy.Circle: "C1", hierarchy.Division: "D1",
		hierarchy.Substation: "S1",
	})
	next, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, hierarchy.Zone, next.Level)
	assert.Equal(t, []string{"Z1"}, next.Candidates)

	assert.Empty(t, tbl.Candidates([]hierarchy.Filter{{Level: hierarchy.Region, Value: ""}}))
}

func TestLoad_CSVHeadersIgnoreCaseAndSpacing(t *testing.T) {
	path := writeCSV(t,
		"\ufeffREGION, circle ,Division,SUB  STATION,Feeder,DTR,DTR Code,Feeder Code,MSN",
		"North,C1,D1,S1,F1,T1,DC1,FC1, MSN001 ",
		",,,,,,,,",
	)

	tbl, err := hierarchy.Load(path, hierarchy.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, []string{"MSN001"}, tbl.Values(hierarchy.MSN))
}

func TestLoad_MissingColumnIsLoadError(t *testing.T) {
	path := writeCSV(t,
		"Region,Circle,Division,Feeder,Dtr,Dtr code,Feeder code,Msn",
		"North,C1,D1,F1,T1,DC1,FC1,MSN001",
	)

	tbl, err := hierarchy.Load(path, hierarchy.LoadOptions{})
	assert.Nil(t, tbl)

	var le *hierarchy.LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, path, le.Path)
	assert.Contains(t, err.Error(), "Sub station")
}

func TestLoad_Failures(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"missing file": filepath.Join(dir, "nope.xlsx"),
		"unsupported":  filepath.Join(dir, "master.txt"),
		"header only":  writeCSV(t, strings.Join(masterHeader, ",")),
	}
	for name, path := range cases {
		t.Run(name, func(t *testing.T) {
			tbl, err := hierarchy.Load(path, hierarchy.LoadOptions{})
			assert.Nil(t, tbl)
			var le *hierarchy.LoadError
			assert.True(t, errors.As(err, &le), "got %v", err)
		})
	}
}

func TestReadRows_WorkbookWithoutSheets(t *testing.T) {
	rows, err := hierarchy.ReadRows(writeEmptyWorkbook(t), "")
	assert.Nil(t, rows)
	assert.Error(t, err)
}

// writeEmptyWorkbook writes an .xlsx package whose workbook lists no sheets.
func writeEmptyWorkbook(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/></Types>`,
		"xl/workbook.xml":     `<?xml version="1.0" encoding="UTF-8"?><workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheets/></workbook>`,
	}
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestLoad_NamedSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Master")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Master", "A1", &[]interface{}{"Region", "Circle", "Division", "Sub station", "Feeder", "Dtr", "Dtr code", "Feeder code", "Msn"}))
	require.NoError(t, f.SetSheetRow("Master", "A2", &[]interface{}{"East", "C7", "D7", "S7", "F7", "T7", "DC7", "FC7", 123456}))
	path := filepath.Join(t.TempDir(), "named.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, err = hierarchy.Load(path, hierarchy.LoadOptions{})
	assert.Error(t, err, "first sheet is empty")

	tbl, err := hierarchy.Load(path, hierarchy.LoadOptions{Sheet: "Master"})
	require.NoError(t, err)
	assert.Equal(t, []string{"123456"}, tbl.Values(hierarchy.MSN))
}

func TestLoadSchema_OverridesAliases(t *testing.T) {
	schemaPath := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte("columns:\n  msn: [\"Meter No\"]\n  substation: [\"SS Name\"]\n"), 0o644))

	schema, err := hierarchy.LoadSchema(schemaPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"Meter No"}, schema.Columns[hierarchy.MSN])
	assert.Equal(t, []string{"Region"}, schema.Columns[hierarchy.Region])

	path := writeCSV(t,
		"Region,Circle,Division,SS Name,Feeder,Dtr,Dtr code,Feeder code,Meter No",
		"North,C1,D1,S1,F1,T1,DC1,FC1,MSN001",
	)
	tbl, err := hierarchy.Load(path, hierarchy.LoadOptions{Schema: schema})
	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, tbl.Values(hierarchy.Substation))
}

func TestLoadSchema_UnknownLevel(t *testing.T) {
	schemaPath := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte("columns:\n  pole: [\"Pole\"]\n"), 0o644))

	_, err := hierarchy.LoadSchema(schemaPath)
	assert.ErrorContains(t, err, "unknown level")
}

func TestHolder_ReloadKeepsLastGoodTable(t *testing.T) {
	path := writeWorkbook(t, masterHeader, fixtureRows)
	h := hierarchy.NewHolder(hierarchy.Source{Path: path})

	_, err := h.Current()
	require.ErrorIs(t, err, hierarchy.ErrNotLoaded)

	require.NoError(t, h.Reload())
	first, err := h.Current()
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))
	assert.Error(t, h.Reload())

	current, err := h.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

func TestHolder_FirstLoadFailureIsReported(t *testing.T) {
	h := hierarchy.NewHolder(hierarchy.Source{Path: filepath.Join(t.TempDir(), "missing.xlsx")})
	require.Error(t, h.Reload())

	tbl, err := h.Current()
	assert.Nil(t, tbl)
	var le *hierarchy.LoadError
	assert.True(t, errors.As(err, &le))
}

func TestStaticHolder(t *testing.T) {
	tbl := fixture(t)
	h := hierarchy.NewStaticHolder(tbl)
	assert.Error(t, h.Reload())

	got, err := h.Current()
	require.NoError(t, err)
	assert.Same(t, tbl, got)
}
