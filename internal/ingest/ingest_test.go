package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fdcatalog/internal/rateengine"
)

const sampleCSV = `Plan Name,Min Amount,Max Amount,Tenure,Base Rate,Details,premature_conditions
Alpha Saver,100000,10000000,12,7.0,Standard plan,"[{""condition_type"":""premature"",""min_tenure_months"":0,""max_tenure_months"":1,""interest_rate"":6.0,""penalty_rate"":0.5},{""condition_type"":""premature"",""min_tenure_months"":1,""max_tenure_months"":3,""interest_rate"":6.25,""penalty_rate"":0.25}]"
Beta Saver,50000,,24,7.5,,
`

func mustTable(t *testing.T, csv string) Table {
	t.Helper()
	table, err := ReadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return table
}

func TestReadCSV_NormalizesHeaderAliases(t *testing.T) {
	table := mustTable(t, sampleCSV)
	want := []string{"plan_name", "minimum_amount", "maximum_amount", "tenure_months", "base_interest_rate", "description", "premature_conditions"}
	if len(table.Headers) != len(want) {
		t.Fatalf("got %d headers, want %d", len(table.Headers), len(want))
	}
	for i, h := range want {
		if table.Headers[i] != h {
			t.Fatalf("header %d: got %q, want %q", i, table.Headers[i], h)
		}
	}
}

func TestReadCSV_MissingRequiredColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("plan_name,tenure_months\nA,12\n"))
	if err == nil {
		t.Fatal("expected error for missing columns, got nil")
	}
	if !strings.Contains(err.Error(), "minimum_amount") {
		t.Fatalf("error should name the missing column, got %q", err)
	}
}

func TestParse_PercentUnit(t *testing.T) {
	res := Parse(mustTable(t, sampleCSV), UnitPercent)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Drafts) != 2 {
		t.Fatalf("got %d drafts, want 2", len(res.Drafts))
	}

	alpha := res.Drafts[0]
	if alpha.Row != 2 {
		t.Fatalf("first data row should be 2, got %d", alpha.Row)
	}
	if alpha.Name != "Alpha Saver" {
		t.Fatalf("got name %q", alpha.Name)
	}
	if !alpha.BaseRate.Equal(decimal.RequireFromString("0.07")) {
		t.Fatalf("base rate not converted from percent: %s", alpha.BaseRate)
	}
	// Maturity rule plus two premature conditions.
	if len(alpha.Rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(alpha.Rules))
	}
	if alpha.Rules[0].Kind != rateengine.RuleMaturity {
		t.Fatalf("first rule should be maturity, got %s", alpha.Rules[0].Kind)
	}
	second := alpha.Rules[2]
	if !second.Rate.Equal(decimal.RequireFromString("0.0625")) {
		t.Fatalf("premature rate not converted: %s", second.Rate)
	}
	if !second.PenaltyRate.Equal(decimal.RequireFromString("0.0025")) {
		t.Fatalf("penalty rate not converted: %s", second.PenaltyRate)
	}

	beta := res.Drafts[1]
	if beta.MaximumAmount != nil {
		t.Fatalf("blank maximum should stay nil, got %s", beta.MaximumAmount)
	}
	if len(beta.Rules) != 1 {
		t.Fatalf("beta should only carry the maturity rule, got %d", len(beta.Rules))
	}
}

func TestParse_FractionUnitKeepsRates(t *testing.T) {
	csv := "plan_name,minimum_amount,tenure_months,base_interest_rate\nGamma,1000,6,0.065\n"
	res := Parse(mustTable(t, csv), UnitFraction)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if !res.Drafts[0].BaseRate.Equal(decimal.RequireFromString("0.065")) {
		t.Fatalf("fraction unit should not rescale, got %s", res.Drafts[0].BaseRate)
	}
}

func TestParse_BadRowSkippedOthersKept(t *testing.T) {
	csv := "plan_name,minimum_amount,tenure_months,base_interest_rate\n" +
		"Good,1000,12,7.0\n" +
		",1000,twelve,7.0\n" +
		"Also Good,2000,24,7.5\n"
	res := Parse(mustTable(t, csv), UnitPercent)
	if len(res.Drafts) != 2 {
		t.Fatalf("got %d drafts, want 2", len(res.Drafts))
	}
	if len(res.Errors) != 2 {
		t.Fatalf("got %d errors, want 2 (name and tenure): %v", len(res.Errors), res.Errors)
	}
	for _, e := range res.Errors {
		if e.Row != 3 {
			t.Fatalf("errors should point at row 3, got %d", e.Row)
		}
	}
}

func TestParse_InvalidConditionJSONFailsRow(t *testing.T) {
	csv := "plan_name,minimum_amount,tenure_months,base_interest_rate,premature_conditions\n" +
		"Delta,1000,12,7.0,not-json\n"
	res := Parse(mustTable(t, csv), UnitPercent)
	if len(res.Drafts) != 0 {
		t.Fatalf("row with bad conditions should produce no draft")
	}
	if len(res.Errors) != 1 || res.Errors[0].Column != "premature_conditions" {
		t.Fatalf("got errors %v", res.Errors)
	}
}

func TestParse_NoConditionsWarns(t *testing.T) {
	csv := "plan_name,minimum_amount,tenure_months,base_interest_rate\nEpsilon,1000,12,7.0\n"
	res := Parse(mustTable(t, csv), UnitPercent)
	if len(res.Warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(res.Warnings))
	}
	if res.Warnings[0].Column != "premature_conditions" {
		t.Fatalf("warning should name premature_conditions, got %q", res.Warnings[0].Column)
	}
	if len(res.Drafts) != 1 {
		t.Fatalf("warned row must still produce a draft")
	}
}

func TestParse_BlankRowsIgnored(t *testing.T) {
	csv := "plan_name,minimum_amount,tenure_months,base_interest_rate\nZeta,1000,12,7.0\n,,,\n"
	res := Parse(mustTable(t, csv), UnitPercent)
	if len(res.Drafts) != 1 || len(res.Errors) != 0 {
		t.Fatalf("blank row should be skipped silently: drafts=%d errors=%v", len(res.Drafts), res.Errors)
	}
}

func TestBuildTemplate_RoundTrips(t *testing.T) {
	f, err := BuildTemplate()
	if err != nil {
		t.Fatalf("BuildTemplate: %v", err)
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	table, err := ReadXLSX(&buf)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	res := Parse(table, UnitPercent)
	if len(res.Errors) != 0 {
		t.Fatalf("template must parse cleanly, got %v", res.Errors)
	}
	if len(res.Drafts) != 2 {
		t.Fatalf("got %d drafts, want 2", len(res.Drafts))
	}
	for _, d := range res.Drafts {
		terms := d.Terms()
		if violations := rateengine.Validate(terms, d.EngineRules()); rateengine.HasErrors(violations) {
			t.Fatalf("template plan %q should validate: %v", d.Name, violations)
		}
	}
}

func TestParseUnit(t *testing.T) {
	cases := []struct {
		in      string
		want    RateUnit
		wantErr bool
	}{
		{"percent", UnitPercent, false},
		{" Fraction ", UnitFraction, false},
		{"bps", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := ParseUnit(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseUnit(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseUnit(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseUnit(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
