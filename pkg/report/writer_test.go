package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfm-monthly/pkg/models"
)

func sampleRows() []models.PeriodSegmentSummary {
	return []models.PeriodSegmentSummary{
		{Year: 2022, Month: 4, SegmentID: "churned", SegmentName: "Churned", TotalMonetaryValue: decimal.Zero, CustomerCount: 3},
		{Year: 2022, Month: 4, SegmentID: "cant_lose", SegmentName: "Can't lose", TotalMonetaryValue: decimal.RequireFromString("1234.5"), CustomerCount: 2},
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sampleRows(), ','))

	want := "year,month,segment_id,segment_name,total_monetary_value,customer_count\n" +
		"2022,4,churned,Churned,0.00,3\n" +
		"2022,4,cant_lose,Can't lose,1234.50,2\n"
	assert.Equal(t, want, buf.String())
}

func TestWrite_HeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil, ';'))
	assert.Equal(t, "year;month;segment_id;segment_name;total_monetary_value;customer_count\n", buf.String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out", "report.csv")
	require.NoError(t, WriteFile(path, sampleRows(), ','))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "2022,4,churned,Churned,0.00,3")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file left behind")
}

func TestWriteFile_Unwritable(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	path := filepath.Join(blocker, "report.csv")
	err := WriteFile(path, sampleRows(), ',')
	require.Error(t, err)
	assert.Contains(t, err.Error(), blocker)
}
