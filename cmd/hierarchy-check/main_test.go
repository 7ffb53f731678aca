package main

import (
	"bytes"
	"testing"

	"github.com/EmpoweredVote/dtr-indexing/internal/hierarchy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	sel, err := parsePath(" region=North, circle = C1 ,,dtr_code=DC1")
	require.NoError(t, err)
	assert.Equal(t, map[hierarchy.Level]string{
		hierarchy.Region:  "North",
		hierarchy.Circle:  "C1",
		hierarchy.DTRCode: "DC1",
	}, sel)

	_, err = parsePath("region")
	assert.Error(t, err)
	_, err = parsePath("planet=Mars")
	assert.Error(t, err)
}

func TestPrintCascade(t *testing.T) {
	table, err := hierarchy.NewTable(hierarchy.DefaultChain(), [][]string{
		{"North", "C1", "D1", "S1", "F1", "T1", "DC1", "FC1", "MSN001"},
		{"North", "C1", "D2", "S2", "F2", "T2", "DC2", "FC2", "MSN002"},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	summarize(&buf, table)
	assert.Contains(t, buf.String(), "Rows: 2")

	buf.Reset()
	printCascade(&buf, table.Resolve(map[hierarchy.Level]string{
		hierarchy.Region: "North", hierarchy.Circle: "C1",
	}))
	out := buf.String()
	assert.Contains(t, out, "North")
	assert.Contains(t, out, "D1 | D2")
	assert.NotContains(t, out, "Suggested meter serial")

	buf.Reset()
	printCascade(&buf, table.Resolve(map[hierarchy.Level]string{
		hierarchy.Region: "North", hierarchy.Circle: "C1", hierarchy.Division: "D1",
		hierarchy.Substation: "S1", hierarchy.Feeder: "F1", hierarchy.DTR: "T1",
		hierarchy.DTRCode: "DC1", hierarchy.FeederCode: "FC1",
	}))
	assert.Contains(t, buf.String(), "Suggested meter serial: MSN001")
}
