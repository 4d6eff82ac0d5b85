package rateengine

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func violationMessages(violations []Violation, severity Severity) []string {
	var out []string
	for _, v := range violations {
		if v.Severity == severity {
			out = append(out, v.Message)
		}
	}
	return out
}

func containsMessage(msgs []string, substr string) bool {
	for _, m := range msgs {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidate_CleanRuleSet(t *testing.T) {
	v := Validate(samplePlan(), []Rule{
		{Kind: RuleMaturity, Rate: dec("0.07")},
		{Kind: RulePremature, MinTenureMonths: intPtr(0), MaxTenureMonths: intPtr(6), Rate: dec("0.06")},
		{Kind: RulePremature, MinTenureMonths: intPtr(6), Rate: dec("0.065")},
	})
	if len(v) != 0 {
		t.Fatalf("violations=%v want none", v)
	}
}

func TestValidate_MaturityCount(t *testing.T) {
	tests := []struct {
		name  string
		rules []Rule
		want  string
	}{
		{
			"no maturity",
			[]Rule{{Kind: RulePremature, MinTenureMonths: intPtr(0), Rate: dec("0.06")}},
			"found none",
		},
		{
			"two maturity",
			[]Rule{
				{Kind: RuleMaturity, Rate: dec("0.07")},
				{Kind: RuleMaturity, Rate: dec("0.08")},
				{Kind: RulePremature, MinTenureMonths: intPtr(0), Rate: dec("0.06")},
			},
			"found 2",
		},
	}
	for _, tt := range tests {
		v := Validate(samplePlan(), tt.rules)
		if !HasErrors(v) {
			t.Fatalf("%s: expected errors, got %v", tt.name, v)
		}
		if !containsMessage(violationMessages(v, SeverityError), tt.want) {
			t.Fatalf("%s: violations=%v want message containing %q", tt.name, v, tt.want)
		}
	}
}

func TestValidate_StructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		rule Rule
		want string
	}{
		{
			"maturity with bounds",
			Rule{Kind: RuleMaturity, MinTenureMonths: intPtr(0), Rate: dec("0.07")},
			"must not carry tenure bounds",
		},
		{
			"premature without min",
			Rule{Kind: RulePremature, Rate: dec("0.06")},
			"requires min_tenure_months",
		},
		{
			"max below min",
			Rule{Kind: RulePremature, MinTenureMonths: intPtr(6), MaxTenureMonths: intPtr(3), Rate: dec("0.06")},
			"must be >= min_tenure_months",
		},
		{
			"negative rate",
			Rule{Kind: RulePremature, MinTenureMonths: intPtr(0), Rate: dec("-0.01")},
			"rate must not be negative",
		},
		{
			"negative penalty rate",
			Rule{Kind: RulePremature, MinTenureMonths: intPtr(0), Rate: dec("0.06"), PenaltyRate: dec("-0.5")},
			"penalty_rate must not be negative",
		},
		{
			"negative fixed penalty",
			Rule{Kind: RulePremature, MinTenureMonths: intPtr(0), Rate: dec("0.06"), PenaltyFixed: decimal.NewFromInt(-100)},
			"penalty_fixed must not be negative",
		},
	}
	for _, tt := range tests {
		rules := []Rule{{Kind: RuleMaturity, Rate: dec("0.07")}}
		if tt.rule.Kind == RuleMaturity {
			rules = nil
		}
		rules = append(rules, tt.rule)
		v := Validate(samplePlan(), rules)
		if !containsMessage(violationMessages(v, SeverityError), tt.want) {
			t.Fatalf("%s: violations=%v want error containing %q", tt.name, v, tt.want)
		}
	}
}

func TestValidate_BadPlanTerms(t *testing.T) {
	maxAmount := dec("500")
	terms := PlanTerms{
		TenureMonths:  0,
		BaseRate:      dec("-0.07"),
		MinimumAmount: dec("1000"),
		MaximumAmount: &maxAmount,
	}
	v := Validate(terms, []Rule{{Kind: RuleMaturity, Rate: dec("0.07")}})
	errs := violationMessages(v, SeverityError)
	for _, want := range []string{
		"tenure_months must be positive",
		"base_rate must not be negative",
		"maximum_amount must be >= minimum_amount",
	} {
		if !containsMessage(errs, want) {
			t.Fatalf("violations=%v want error containing %q", v, want)
		}
	}
}

func TestValidate_GapAndOverlapAreWarnings(t *testing.T) {
	v := Validate(samplePlan(), []Rule{
		{Kind: RuleMaturity, Rate: dec("0.07")},
		{Kind: RulePremature, MinTenureMonths: intPtr(0), MaxTenureMonths: intPtr(3), Rate: dec("0.05")},
		{Kind: RulePremature, MinTenureMonths: intPtr(2), MaxTenureMonths: intPtr(6), Rate: dec("0.06")},
	})
	if HasErrors(v) {
		t.Fatalf("overlap/gap must not be errors: %v", v)
	}
	warnings := violationMessages(v, SeverityWarning)
	if !containsMessage(warnings, "overlap") {
		t.Fatalf("warnings=%v want overlap warning", warnings)
	}
	if !containsMessage(warnings, "gap for [6, 12)") {
		t.Fatalf("warnings=%v want trailing gap warning", warnings)
	}
}

func TestValidate_UnboundedRuleClosesCoverage(t *testing.T) {
	v := Validate(samplePlan(), []Rule{
		{Kind: RuleMaturity, Rate: dec("0.07")},
		{Kind: RulePremature, MinTenureMonths: intPtr(0), MaxTenureMonths: intPtr(6), Rate: dec("0.05")},
		{Kind: RulePremature, MinTenureMonths: intPtr(6), Rate: dec("0.06")},
	})
	if len(violationMessages(v, SeverityWarning)) != 0 {
		t.Fatalf("violations=%v want no coverage warnings", v)
	}
}

func TestValidate_NoPrematureRulesWarns(t *testing.T) {
	v := Validate(samplePlan(), []Rule{{Kind: RuleMaturity, Rate: dec("0.07")}})
	if HasErrors(v) {
		t.Fatalf("maturity-only rule set must be structurally valid: %v", v)
	}
	if !containsMessage(violationMessages(v, SeverityWarning), "no premature coverage") {
		t.Fatalf("violations=%v want missing-coverage warning", v)
	}
}
