// Package report writes the monthly segment report as delimited text.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"rfm-monthly/pkg/models"
)

// Header is the column layout of the report.
var Header = []string{"year", "month", "segment_id", "segment_name", "total_monetary_value", "customer_count"}

// Write emits the header and one line per summary.
func Write(w io.Writer, rows []models.PeriodSegmentSummary, delimiter rune) error {
	cw := csv.NewWriter(w)
	if delimiter != 0 {
		cw.Comma = delimiter
	}
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			strconv.Itoa(r.Year),
			strconv.Itoa(r.Month),
			r.SegmentID,
			r.SegmentName,
			r.TotalMonetaryValue.StringFixed(2),
			strconv.Itoa(r.CustomerCount),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the report to a temporary file next to path and renames it
// into place, so a failure never leaves a partial report at path.
func WriteFile(path string, rows []models.PeriodSegmentSummary, delimiter rune) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if err := Write(tmp, rows, delimiter); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
