package rateengine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func samplePlan() PlanTerms {
	max := dec("10000000")
	return PlanTerms{
		TenureMonths:  12,
		BaseRate:      dec("0.07"),
		MinimumAmount: dec("100000"),
		MaximumAmount: &max,
	}
}

func sampleRules() []Rule {
	return []Rule{
		{Kind: RuleMaturity, Rate: dec("0.07"), PenaltyRate: decimal.Zero, PenaltyFixed: decimal.Zero},
		{Kind: RulePremature, MinTenureMonths: intPtr(0), MaxTenureMonths: intPtr(1), Rate: dec("0.06"), PenaltyRate: dec("0.005"), PenaltyFixed: decimal.Zero},
		{Kind: RulePremature, MinTenureMonths: intPtr(1), MaxTenureMonths: intPtr(3), Rate: dec("0.0625"), PenaltyRate: dec("0.0025"), PenaltyFixed: decimal.Zero},
	}
}

func TestResolve_PrematureSecondRange(t *testing.T) {
	d := Resolve(samplePlan(), sampleRules(), 2)
	if d.Kind != DecisionPremature {
		t.Fatalf("kind=%s want premature", d.Kind)
	}
	if !d.Rate.Equal(dec("0.0625")) {
		t.Fatalf("rate=%s want 0.0625", d.Rate)
	}
	if !d.PenaltyRate.Equal(dec("0.0025")) {
		t.Fatalf("penalty_rate=%s want 0.0025", d.PenaltyRate)
	}
}

func TestResolve_MaturityOverridesPremature(t *testing.T) {
	// A premature range deliberately covering the full tenure must lose to
	// the maturity rule at and past tenure.
	rules := sampleRules()
	rules = append(rules, Rule{Kind: RulePremature, MinTenureMonths: intPtr(3), Rate: dec("0.05")})
	for _, months := range []int{12, 13, 60} {
		d := Resolve(samplePlan(), rules, months)
		if d.Kind != DecisionMaturity {
			t.Fatalf("months=%d kind=%s want maturity", months, d.Kind)
		}
		if !d.Rate.Equal(dec("0.07")) {
			t.Fatalf("months=%d rate=%s want 0.07", months, d.Rate)
		}
		if !d.PenaltyRate.IsZero() || !d.PenaltyFixed.IsZero() {
			t.Fatalf("months=%d maturity decision carries penalties: %+v", months, d)
		}
	}
}

func TestResolve_HalfOpenUpperBound(t *testing.T) {
	// withdrawal_months equal to a rule's max is NOT matched by that rule.
	d := Resolve(samplePlan(), sampleRules(), 1)
	if d.Kind != DecisionPremature || !d.Rate.Equal(dec("0.0625")) {
		t.Fatalf("months=1 decision=%+v want second premature range", d)
	}
	d = Resolve(samplePlan(), sampleRules(), 3)
	if d.Kind != DecisionDefault {
		t.Fatalf("months=3 kind=%s want default (no range covers [3,12))", d.Kind)
	}
}

func TestResolve_GapFallsBackToDefault(t *testing.T) {
	rules := []Rule{
		{Kind: RuleMaturity, Rate: dec("0.07")},
		{Kind: RulePremature, MinTenureMonths: intPtr(0), MaxTenureMonths: intPtr(6), Rate: dec("0.06")},
	}
	d := Resolve(samplePlan(), rules, 9)
	if d.Kind != DecisionDefault {
		t.Fatalf("kind=%s want default", d.Kind)
	}
	if !d.Rate.Equal(dec("0.07")) {
		t.Fatalf("rate=%s want plan base rate 0.07", d.Rate)
	}
	if !d.PenaltyRate.Equal(dec("0.01")) {
		t.Fatalf("penalty_rate=%s want 0.01", d.PenaltyRate)
	}
	if !d.PenaltyFixed.IsZero() {
		t.Fatalf("penalty_fixed=%s want 0", d.PenaltyFixed)
	}
}

func TestResolve_FirstMatchWinsOnOverlap(t *testing.T) {
	rules := []Rule{
		{Kind: RuleMaturity, Rate: dec("0.07")},
		{Kind: RulePremature, MinTenureMonths: intPtr(0), MaxTenureMonths: intPtr(6), Rate: dec("0.05")},
		{Kind: RulePremature, MinTenureMonths: intPtr(0), MaxTenureMonths: intPtr(12), Rate: dec("0.04")},
	}
	d := Resolve(samplePlan(), rules, 2)
	if !d.Rate.Equal(dec("0.05")) {
		t.Fatalf("rate=%s want 0.05 (first matching rule in stored order)", d.Rate)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	plan := samplePlan()
	rules := sampleRules()
	first := Resolve(plan, rules, 2)
	second := Resolve(plan, rules, 2)
	if first != second {
		t.Fatalf("resolve not idempotent: %+v vs %+v", first, second)
	}
}

func TestComputeMaturity_PrematureExample(t *testing.T) {
	plan := samplePlan()
	d := Resolve(plan, sampleRules(), 2)
	res, err := ComputeMaturity(plan, d, dec("100000"), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.GrossInterest.Round(2); !got.Equal(dec("1041.67")) {
		t.Fatalf("gross=%s want 1041.67", got)
	}
	if got := res.TotalPenalty.Round(2); !got.Equal(dec("250.00")) {
		t.Fatalf("penalty=%s want 250.00", got)
	}
	if got := res.NetInterest.Round(2); !got.Equal(dec("791.67")) {
		t.Fatalf("net=%s want 791.67", got)
	}
	if got := res.MaturityAmount.Round(2); !got.Equal(dec("100791.67")) {
		t.Fatalf("maturity=%s want 100791.67", got)
	}
}

func TestComputeMaturity_AtTenure(t *testing.T) {
	plan := samplePlan()
	d := Resolve(plan, sampleRules(), 12)
	res, err := ComputeMaturity(plan, d, dec("100000"), 12)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.GrossInterest.Round(2); !got.Equal(dec("7000.00")) {
		t.Fatalf("gross=%s want 7000.00", got)
	}
	if !res.NetInterest.Equal(res.GrossInterest) {
		t.Fatalf("net=%s want equal to gross (no maturity penalty)", res.NetInterest)
	}
	if got := res.MaturityAmount.Round(2); !got.Equal(dec("107000.00")) {
		t.Fatalf("maturity=%s want 107000.00", got)
	}
}

func TestComputeMaturity_FloorsAtPrincipal(t *testing.T) {
	plan := samplePlan()
	// Zero rate with a crushing fixed penalty: depositor still gets the
	// principal back and net interest never goes negative.
	d := Decision{Kind: DecisionPremature, Rate: decimal.Zero, PenaltyRate: dec("0.5"), PenaltyFixed: dec("99999")}
	res, err := ComputeMaturity(plan, d, dec("100000"), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.NetInterest.IsZero() {
		t.Fatalf("net=%s want 0", res.NetInterest)
	}
	if !res.MaturityAmount.Equal(dec("100000")) {
		t.Fatalf("maturity=%s want 100000", res.MaturityAmount)
	}
}

func TestComputeMaturity_InvalidScenarios(t *testing.T) {
	plan := samplePlan()
	d := Resolve(plan, sampleRules(), 2)

	tests := []struct {
		name      string
		principal decimal.Decimal
		months    int
	}{
		{"below minimum", dec("99999"), 2},
		{"above maximum", dec("10000001"), 2},
		{"negative months", dec("100000"), -1},
	}
	for _, tt := range tests {
		if _, err := ComputeMaturity(plan, d, tt.principal, tt.months); !errors.Is(err, ErrInvalidScenario) {
			t.Fatalf("%s: err=%v want ErrInvalidScenario", tt.name, err)
		}
	}
}

func TestComputeMaturity_NoMaximumAccepted(t *testing.T) {
	plan := samplePlan()
	plan.MaximumAmount = nil
	d := Resolve(plan, sampleRules(), 2)
	if _, err := ComputeMaturity(plan, d, dec("500000000"), 2); err != nil {
		t.Fatalf("unbounded plan rejected principal: %v", err)
	}
}

func TestSortRules_StableByMin(t *testing.T) {
	rules := []Rule{
		{Kind: RulePremature, MinTenureMonths: intPtr(6), Rate: dec("0.06")},
		{Kind: RulePremature, MinTenureMonths: intPtr(0), MaxTenureMonths: intPtr(3), Rate: dec("0.05")},
		{Kind: RulePremature, MinTenureMonths: intPtr(0), MaxTenureMonths: intPtr(6), Rate: dec("0.04")},
		{Kind: RuleMaturity, Rate: dec("0.07")},
	}
	SortRules(rules)
	if rules[0].Kind != RuleMaturity {
		t.Fatalf("rules[0].kind=%s want maturity first", rules[0].Kind)
	}
	if !rules[1].Rate.Equal(dec("0.05")) || !rules[2].Rate.Equal(dec("0.04")) {
		t.Fatalf("equal-min rules reordered: %s then %s, want 0.05 then 0.04", rules[1].Rate, rules[2].Rate)
	}
	if *rules[3].MinTenureMonths != 6 {
		t.Fatalf("rules[3].min=%d want 6", *rules[3].MinTenureMonths)
	}
}
