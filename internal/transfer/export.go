package transfer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"expensetracker/internal/core"
)

// CSVHeader lists the transaction columns shared by CSV, XLSX and Sheets.
var CSVHeader = []string{"id", "date", "type", "category", "amount", "description"}

// Export encodes l in format f.
func Export(l core.Ledger, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return ExportJSON(l)
	case FormatCSV:
		return ExportCSV(l.Transactions), nil
	case FormatXLSX:
		return ExportXLSX(l)
	default:
		return nil, fmt.Errorf("unsupported export format %q", f)
	}
}

// ExportJSON writes the whole ledger indented by two spaces.
func ExportJSON(l core.Ledger) ([]byte, error) {
	data, err := json.MarshalIndent(l.Normalized(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode ledger: %w", err)
	}
	return data, nil
}

// ExportCSV writes one line per transaction under CSVHeader. Only the
// description is quoted, with inner quotes doubled; lines are joined by \n
// without a trailing newline.
func ExportCSV(txs []core.Transaction) []byte {
	var b strings.Builder
	b.WriteString(strings.Join(CSVHeader, ","))
	for _, t := range txs {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			t.ID,
			t.Date.String(),
			string(t.Kind),
			t.Category,
			t.Amount.String(),
			`"` + strings.ReplaceAll(t.Description, `"`, `""`) + `"`,
		}, ","))
	}
	return []byte(b.String())
}

// TransactionRow is the CSVHeader-ordered row of t.
func TransactionRow(t core.Transaction) []any {
	return []any{t.ID, t.Date.String(), string(t.Kind), t.Category, t.Amount.InexactFloat64(), t.Description}
}

// ExportXLSX writes a workbook with Transactions, Categories and Budgets sheets.
func ExportXLSX(l core.Ledger) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	txRows := make([][]any, 0, len(l.Transactions))
	for _, t := range l.Transactions {
		txRows = append(txRows, TransactionRow(t))
	}
	catRows := make([][]any, 0, len(l.Categories))
	for _, c := range l.Categories {
		catRows = append(catRows, []any{c.ID, c.Name, c.Color, c.Icon})
	}
	budgetRows := make([][]any, 0, len(l.Budgets))
	for _, b := range l.Budgets {
		budgetRows = append(budgetRows, []any{b.ID, b.Category, b.Amount.InexactFloat64(), string(b.Period)})
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]any
		widths []float64
	}{
		{"Transactions", CSVHeader, txRows, []float64{38, 12, 10, 16, 12, 40}},
		{"Categories", []string{"id", "name", "color", "icon"}, catRows, []float64{38, 16, 10, 14}},
		{"Budgets", []string{"id", "category", "amount", "period"}, budgetRows, []float64{38, 16, 12, 10}},
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s.name, s.header, s.rows, s.widths); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any, widths []float64) error {
	head := make([]any, len(header))
	for i, h := range header {
		head[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("set %s width: %w", sheet, err)
		}
	}
	return nil
}
