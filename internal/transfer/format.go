// Package transfer converts ledgers to and from the export formats.
package transfer

import (
	"fmt"
	"strings"
	"time"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, csv and xlsx in any case; empty means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// ExportFilename is expense-tracker-export-YYYY-MM-DD.<ext>, dated in UTC.
func ExportFilename(f Format, now time.Time) string {
	return fmt.Sprintf("expense-tracker-export-%s.%s", now.UTC().Format("2006-01-02"), f)
}
