package ingest

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const templateSheet = "FD_Plans"

var templateHeaders = []string{
	"plan_name",
	"minimum_amount",
	"maximum_amount",
	"tenure_months",
	"base_interest_rate",
	"description",
	"premature_conditions",
}

var templateRows = [][]any{
	{
		"Sample FD Plan 1",
		100000,
		10000000,
		12,
		7.0,
		"Regular FD plan with flexible tenure",
		`[{"condition_type":"premature","min_tenure_months":0,"max_tenure_months":1,"interest_rate":6.0,"penalty_rate":0.5,"description":"Withdrawal within 1 month"},{"condition_type":"premature","min_tenure_months":1,"max_tenure_months":3,"interest_rate":6.25,"penalty_rate":0.25,"description":"Withdrawal within 3 months"}]`,
	},
	{
		"Sample FD Plan 2",
		50000,
		5000000,
		24,
		7.5,
		"Premium FD plan for higher amounts",
		`[{"condition_type":"premature","min_tenure_months":0,"max_tenure_months":6,"interest_rate":6.5,"penalty_rate":1.0,"description":"Withdrawal within 6 months"}]`,
	},
}

var templateInstructions = [][]any{
	{"Column", "Description", "Format"},
	{"plan_name", "Name of the FD plan (required)", "Text"},
	{"minimum_amount", "Minimum investment amount (required)", "Number (e.g., 100000)"},
	{"maximum_amount", "Maximum investment amount (optional)", "Number (e.g., 10000000)"},
	{"tenure_months", "Tenure in months (required)", "Integer (e.g., 12)"},
	{"base_interest_rate", "Base interest rate in the declared unit (required)", "Number (e.g., 7.0 for percent)"},
	{"description", "Plan description (optional)", "Text"},
	{"premature_conditions", "JSON array of premature withdrawal conditions (optional)", "JSON"},
}

// BuildTemplate produces the workbook users download, fill in, and upload
// back: a data sheet with two sample plans and an instructions sheet.
func BuildTemplate() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", templateSheet); err != nil {
		return nil, err
	}

	header := make([]any, len(templateHeaders))
	for i, h := range templateHeaders {
		header[i] = h
	}
	if err := writeRows(f, templateSheet, append([][]any{header}, templateRows...)); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet("Instructions"); err != nil {
		return nil, err
	}
	if err := writeRows(f, "Instructions", templateInstructions); err != nil {
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
