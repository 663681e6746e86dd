package procurement

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/smartdept/budget/internal/encoding"
	"github.com/smartdept/budget/internal/expense"
)

// Column headers of the procurement cell's spreadsheet export.
const (
	colDate        = "Date"
	colDescription = "Description"
	colVendor      = "Vendor"
	colAmount      = "Amount"
	colActivity    = "Activity"
)

var requiredCols = []string{colDate, colDescription, colVendor, colAmount}

var dateLayouts = []string{time.DateOnly, "02/01/2006", "02-Jan-2006"}

// Parser reads procurement CSV exports and produces expense params. The
// header row is located by matching column names, so leading banner rows
// in the export are skipped.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]expense.CreateParams, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	cols, headerIdx, found := findHeader(rows)
	if !found {
		return nil, fmt.Errorf("no header row found: expected columns %s", strings.Join(requiredCols, ", "))
	}

	return parseRows(cols, rows[headerIdx+1:], headerIdx+1)
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

func findHeader(rows [][]string) (colIndex, int, bool) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.TrimSpace(cell)
			if name != "" {
				cols[name] = i
			}
		}

		if matchesRequired(cols) {
			return cols, rowIdx, true
		}
	}

	return nil, 0, false
}

func matchesRequired(cols colIndex) bool {
	for _, name := range requiredCols {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts expense params from data rows. headerRowNum is the
// 0-based index of the header in the original file (for error messages).
func parseRows(cols colIndex, rows [][]string, headerRowNum int) ([]expense.CreateParams, error) {
	var params []expense.CreateParams

	for i, row := range rows {
		rowNum := headerRowNum + i + 2 // 1-based, skipping header

		date, ok := parseDate(cellValue(row, cols[colDate]))
		if !ok {
			// Blank date marks summary/footer rows in the export.
			continue
		}

		desc := cellValue(row, cols[colDescription])
		if desc == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		vendor := cellValue(row, cols[colVendor])
		if vendor == "" {
			return nil, fmt.Errorf("row %d: missing vendor", rowNum)
		}

		amount, err := parseAmount(cellValue(row, cols[colAmount]))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid amount: %w", rowNum, err)
		}

		activity := expense.ActivityMisc
		if idx, ok := cols[colActivity]; ok {
			activity = parseActivity(cellValue(row, idx))
		}

		params = append(params, expense.CreateParams{
			Description:  desc,
			Amount:       amount,
			Date:         date,
			Vendor:       vendor,
			ActivityType: activity,
		})
	}

	return params, nil
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// parseAmount handles plain and grouped formats ("1250.00", "1,00,000.00",
// "₹2,500.50"). Grouping commas are stripped before parsing.
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.TrimPrefix(clean, "₹")
	clean = strings.ReplaceAll(clean, ",", "")

	return decimal.NewFromString(clean)
}

// parseActivity normalizes free-form activity labels ("Expert Talk") to the
// closed enum. Unrecognized labels fall back to MISC rather than failing
// the whole import.
func parseActivity(s string) expense.ActivityType {
	normalized := strings.ToUpper(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, " ", "_")

	activity := expense.ActivityType(normalized)
	if activity.Valid() {
		return activity
	}

	return expense.ActivityMisc
}
