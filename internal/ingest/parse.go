package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fdcatalog/internal/rateengine"
)

// RateUnit declares how the sheet expresses rates. There is no guessing from
// magnitude: a plan yielding 150% annually and one yielding 1.5% are both
// representable only because the uploader states the unit.
type RateUnit string

const (
	// UnitPercent means 7.5 in the sheet is an annual rate of 0.075.
	UnitPercent RateUnit = "percent"
	// UnitFraction means rates are already annual fractions (0.075 = 7.5%).
	UnitFraction RateUnit = "fraction"
)

func ParseUnit(raw string) (RateUnit, error) {
	switch RateUnit(strings.ToLower(strings.TrimSpace(raw))) {
	case UnitPercent:
		return UnitPercent, nil
	case UnitFraction:
		return UnitFraction, nil
	default:
		return "", fmt.Errorf("unknown rate unit %q (want percent or fraction)", raw)
	}
}

var hundred = decimal.NewFromInt(100)

func (u RateUnit) toFraction(v decimal.Decimal) decimal.Decimal {
	if u == UnitPercent {
		return v.Div(hundred)
	}
	return v
}

// RowError ties a parse problem to its sheet location. Row numbers are the
// spreadsheet's own: data starts at row 2, below the header.
type RowError struct {
	Row     int
	Column  string
	Message string
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %s: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// RuleDraft is one parsed rate rule before it is stored.
type RuleDraft struct {
	Kind            rateengine.RuleKind
	MinTenureMonths *int
	MaxTenureMonths *int
	Rate            decimal.Decimal
	PenaltyRate     decimal.Decimal
	PenaltyFixed    decimal.Decimal
	Description     string
}

// PlanDraft is one parsed sheet row: a plan plus its rules, with the source
// row kept for error attribution downstream.
type PlanDraft struct {
	Row           int
	Name          string
	MinimumAmount decimal.Decimal
	MaximumAmount *decimal.Decimal
	TenureMonths  int
	BaseRate      decimal.Decimal
	Description   *string
	Rules         []RuleDraft
}

// Terms snapshots the draft for validation by the rate engine.
func (d PlanDraft) Terms() rateengine.PlanTerms {
	return rateengine.PlanTerms{
		TenureMonths:  d.TenureMonths,
		BaseRate:      d.BaseRate,
		MinimumAmount: d.MinimumAmount,
		MaximumAmount: d.MaximumAmount,
	}
}

// EngineRules converts the draft rules into resolution order.
func (d PlanDraft) EngineRules() []rateengine.Rule {
	rules := make([]rateengine.Rule, 0, len(d.Rules))
	for _, r := range d.Rules {
		rules = append(rules, rateengine.Rule{
			Kind:            r.Kind,
			MinTenureMonths: r.MinTenureMonths,
			MaxTenureMonths: r.MaxTenureMonths,
			Rate:            r.Rate,
			PenaltyRate:     r.PenaltyRate,
			PenaltyFixed:    r.PenaltyFixed,
		})
	}
	rateengine.SortRules(rules)
	return rules
}

// Result is the outcome of parsing one sheet. Rows in Errors produced no
// draft; rows in Warnings did, but with something worth flagging.
type Result struct {
	Drafts   []PlanDraft
	Errors   []RowError
	Warnings []RowError
}

// Parse turns a normalized table into plan drafts. Each data row is
// independent: a bad row is recorded and skipped without aborting the sheet.
func Parse(t Table, unit RateUnit) Result {
	var res Result
	for i, row := range t.Rows {
		rowNumber := i + 2
		if rowIsBlank(row) {
			continue
		}
		draft, errs, warns := parseRow(t, row, rowNumber, unit)
		res.Warnings = append(res.Warnings, warns...)
		if len(errs) > 0 {
			res.Errors = append(res.Errors, errs...)
			continue
		}
		res.Drafts = append(res.Drafts, draft)
	}
	return res
}

func rowIsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRow(t Table, row []string, rowNumber int, unit RateUnit) (PlanDraft, []RowError, []RowError) {
	var errs, warns []RowError
	fail := func(column, format string, args ...any) {
		errs = append(errs, RowError{Row: rowNumber, Column: column, Message: fmt.Sprintf(format, args...)})
	}

	draft := PlanDraft{Row: rowNumber}

	draft.Name = t.cell(row, "plan_name")
	if draft.Name == "" {
		fail("plan_name", "plan name is required")
	}

	if v, err := requireDecimal(t.cell(row, "minimum_amount")); err != nil {
		fail("minimum_amount", "%v", err)
	} else {
		draft.MinimumAmount = v
	}

	if raw := t.cell(row, "maximum_amount"); raw != "" {
		if v, err := requireDecimal(raw); err != nil {
			fail("maximum_amount", "%v", err)
		} else {
			draft.MaximumAmount = &v
		}
	}

	if v, err := requireInt(t.cell(row, "tenure_months")); err != nil {
		fail("tenure_months", "%v", err)
	} else {
		draft.TenureMonths = v
	}

	if v, err := requireDecimal(t.cell(row, "base_interest_rate")); err != nil {
		fail("base_interest_rate", "%v", err)
	} else {
		draft.BaseRate = unit.toFraction(v)
	}

	if desc := t.cell(row, "description"); desc != "" {
		draft.Description = &desc
	}

	if len(errs) > 0 {
		return PlanDraft{}, errs, warns
	}

	// Every plan gets a maturity rule derived from its base rate.
	draft.Rules = append(draft.Rules, RuleDraft{
		Kind:        rateengine.RuleMaturity,
		Rate:        draft.BaseRate,
		PenaltyRate: decimal.Zero,
		Description: "Interest rate on maturity completion",
	})

	if raw := t.cell(row, "premature_conditions"); raw != "" {
		rules, err := parseConditions(raw, unit)
		if err != nil {
			errs = append(errs, RowError{Row: rowNumber, Column: "premature_conditions", Message: err.Error()})
			return PlanDraft{}, errs, warns
		}
		draft.Rules = append(draft.Rules, rules...)
	} else {
		warns = append(warns, RowError{
			Row:     rowNumber,
			Column:  "premature_conditions",
			Message: "no premature conditions declared, early withdrawals will use the default fallback",
		})
	}

	return draft, nil, warns
}

// conditionJSON is the wire shape of one entry in the premature_conditions
// column.
type conditionJSON struct {
	ConditionType   string           `json:"condition_type"`
	MinTenureMonths *int             `json:"min_tenure_months"`
	MaxTenureMonths *int             `json:"max_tenure_months"`
	InterestRate    *decimal.Decimal `json:"interest_rate"`
	PenaltyRate     *decimal.Decimal `json:"penalty_rate"`
	PenaltyAmount   *decimal.Decimal `json:"penalty_amount"`
	Description     string           `json:"description"`
}

func parseConditions(raw string, unit RateUnit) ([]RuleDraft, error) {
	var items []conditionJSON
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("invalid JSON: %v", err)
	}
	rules := make([]RuleDraft, 0, len(items))
	for i, item := range items {
		kind := rateengine.RuleKind(strings.ToLower(strings.TrimSpace(item.ConditionType)))
		if kind != rateengine.RuleMaturity && kind != rateengine.RulePremature {
			return nil, fmt.Errorf("condition %d: condition_type must be maturity or premature", i+1)
		}
		if item.InterestRate == nil {
			return nil, fmt.Errorf("condition %d: interest_rate is required", i+1)
		}
		rule := RuleDraft{
			Kind:        kind,
			Rate:        unit.toFraction(*item.InterestRate),
			Description: item.Description,
		}
		if item.PenaltyRate != nil {
			rule.PenaltyRate = unit.toFraction(*item.PenaltyRate)
		}
		if item.PenaltyAmount != nil {
			rule.PenaltyFixed = *item.PenaltyAmount
		}
		if kind == rateengine.RulePremature {
			min := 0
			if item.MinTenureMonths != nil {
				min = *item.MinTenureMonths
			}
			rule.MinTenureMonths = &min
			rule.MaxTenureMonths = item.MaxTenureMonths
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func requireDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("value is required")
	}
	raw = strings.ReplaceAll(raw, ",", "")
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid number %q", raw)
	}
	return v, nil
}

func requireInt(raw string) (int, error) {
	if raw == "" {
		return 0, fmt.Errorf("value is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		// Spreadsheets often render integers as "12.0".
		f, ferr := strconv.ParseFloat(raw, 64)
		if ferr != nil || f != float64(int(f)) {
			return 0, fmt.Errorf("invalid integer %q", raw)
		}
		return int(f), nil
	}
	return v, nil
}
