package export_test

import (
	"bytes"
	"testing"

	"github.com/EmpoweredVote/dtr-indexing/internal/export"
	"github.com/EmpoweredVote/dtr-indexing/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	recs := []record.Record{
		{
			Region: "North", Circle: "C1", Division: "D1", Substation: "S1", Feeder: "F1",
			DTR: "T1", DTRCode: "DC1", FeederCode: "FC1",
			MSNAuto: "MSN001", MSNFinal: "MSN001",
			OffTime: "10:00 AM", OnTime: "11:00 AM", EventDate: "15-01-2025",
			OfficerName: "Raj Kumar", Mobile: "0876543210", ApplicationNumber: "150120250001",
		},
		{
			Region: "South", Circle: "C2", Division: "D3", Substation: "S3", Feeder: "F3",
			DTR: "T3", DTRCode: "DC3", FeederCode: "FC3",
			MSNAuto: "MSN003", MSNOverride: "MSN999", MSNFinal: "MSN999",
			OffTime: "09:15 PM", OnTime: "10:30 PM", EventDate: "16-01-2025",
			OfficerName: "Asha", Mobile: "9123456780", ApplicationNumber: "160120250002",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(&buf, recs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{export.SheetName}, f.GetSheetList())

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, record.Columns(), rows[0])
	assert.Equal(t, recs[0].Row()[:3], rows[1][:3])
	// Blank Zone and override cells stay in place.
	assert.Equal(t, "0876543210", rows[1][16])
	assert.Equal(t, "150120250001", rows[1][17])
	assert.Equal(t, "MSN999", rows[2][11])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WriteWorkbook(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, record.Columns(), rows[0])
}
