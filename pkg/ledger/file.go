// Package ledger reads a transaction ledger from a delimited text file.
package ledger

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"rfm-monthly/pkg/models"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Columns names the header fields holding customer, date and amount.
type Columns struct {
	Customer string
	Date     string
	Amount   string
}

// ReadFile loads every transaction of the file at path. The first line is a header.
func ReadFile(path string, cols Columns, delimiter rune) ([]models.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer f.Close()

	txs, err := Read(f, cols, delimiter)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	return txs, nil
}

// Read parses a delimited ledger with a header line.
func Read(r io.Reader, cols Columns, delimiter rune) ([]models.Transaction, error) {
	cr := csv.NewReader(r)
	if delimiter != 0 {
		cr.Comma = delimiter
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	ci, di, ai, err := indexColumns(header, cols)
	if err != nil {
		return nil, err
	}

	var out []models.Transaction
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		customer := strings.TrimSpace(rec[ci])
		if customer == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, cols.Customer)
		}
		date, err := parseDate(strings.TrimSpace(rec[di]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, cols.Date, err)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(rec[ai]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %s: %w", line, cols.Amount, err)
		}
		out = append(out, models.Transaction{CustomerID: customer, Date: date, Amount: amount})
	}
	return out, nil
}

func indexColumns(header []string, cols Columns) (int, int, int, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	find := func(name string) (int, error) {
		i, ok := idx[name]
		if !ok {
			return 0, fmt.Errorf("missing column %q", name)
		}
		return i, nil
	}
	ci, err := find(cols.Customer)
	if err != nil {
		return 0, 0, 0, err
	}
	di, err := find(cols.Date)
	if err != nil {
		return 0, 0, 0, err
	}
	ai, err := find(cols.Amount)
	if err != nil {
		return 0, 0, 0, err
	}
	return ci, di, ai, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
