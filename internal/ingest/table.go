package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table is a header-normalized view of one uploaded sheet. Headers are
// lowercased with spaces and dashes folded to underscores, then mapped to
// canonical column names through the alias table.
type Table struct {
	Headers []string
	Rows    [][]string
}

// columnAliases maps every accepted header spelling to its canonical name.
var columnAliases = map[string]string{
	"plan_name":    "plan_name",
	"fd_plan_name": "plan_name",
	"scheme_name":  "plan_name",

	"minimum_amount": "minimum_amount",
	"min_amount":     "minimum_amount",

	"maximum_amount": "maximum_amount",
	"max_amount":     "maximum_amount",

	"tenure_months":    "tenure_months",
	"tenure":           "tenure_months",
	"tenure_in_months": "tenure_months",
	"period":           "tenure_months",

	"base_interest_rate": "base_interest_rate",
	"base_rate":          "base_interest_rate",
	"maturity_rate":      "base_interest_rate",
	"interest_rate":      "base_interest_rate",

	"description":      "description",
	"details":          "description",
	"plan_description": "description",

	"premature_conditions": "premature_conditions",
}

var requiredColumns = []string{
	"plan_name",
	"minimum_amount",
	"tenure_months",
	"base_interest_rate",
}

func normalizeHeader(raw string) string {
	h := strings.ToLower(strings.TrimSpace(raw))
	h = strings.ReplaceAll(h, " ", "_")
	h = strings.ReplaceAll(h, "-", "_")
	if canonical, ok := columnAliases[h]; ok {
		return canonical
	}
	return h
}

func newTable(records [][]string) (Table, error) {
	if len(records) == 0 {
		return Table{}, fmt.Errorf("sheet is empty")
	}
	headers := make([]string, len(records[0]))
	for i, raw := range records[0] {
		headers[i] = normalizeHeader(raw)
	}
	t := Table{Headers: headers, Rows: records[1:]}
	if err := t.checkRequired(); err != nil {
		return Table{}, err
	}
	return t, nil
}

func (t Table) checkRequired() error {
	present := make(map[string]bool, len(t.Headers))
	for _, h := range t.Headers {
		present[h] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required columns missing: %s", strings.Join(missing, ", "))
	}
	return nil
}

// cell returns the trimmed value of the named column in the given row, or ""
// when the column is absent or the row is short.
func (t Table) cell(row []string, column string) string {
	for i, h := range t.Headers {
		if h != column {
			continue
		}
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	return ""
}

// ReadXLSX loads the first sheet of an xlsx workbook.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, fmt.Errorf("workbook has no sheets")
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return newTable(records)
}

// ReadCSV loads a comma-separated sheet with the same header handling as
// ReadXLSX.
func ReadCSV(r io.Reader) (Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("read csv: %w", err)
	}
	return newTable(records)
}
