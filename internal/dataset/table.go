// Package dataset loads the static word pools and requirement metadata.
package dataset

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// Row is one record of a table keyed by column name. Values that parse as
// numbers are float64, everything else is a string.
type Row map[string]any

// String returns the value of col as text.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Number returns the numeric value of col.
func (r Row) Number(col string) (float64, bool) {
	v, ok := r[col].(float64)
	return v, ok
}

// Int returns the numeric value of col truncated to an int.
func (r Row) Int(col string) int {
	v, _ := r.Number(col)
	return int(v)
}

// ParseTable parses CSV text with a header row.
func ParseTable(text string) ([]Row, error) {
	rd := csv.NewReader(strings.NewReader(strings.TrimPrefix(text, "\ufeff")))
	rd.TrimLeadingSpace = true
	records, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse table: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i >= len(rec) {
				continue
			}
			row[col] = parseValue(rec[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func column(rows []Row, col string) ([]string, error) {
	out := make([]string, 0, len(rows))
	for i, r := range rows {
		if _, ok := r[col]; !ok {
			return nil, fmt.Errorf("row %d: missing column %q", i+1, col)
		}
		out = append(out, r.String(col))
	}
	return out, nil
}
