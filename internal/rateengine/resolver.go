package rateengine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidScenario marks a withdrawal scenario the plan cannot accept:
// principal outside the plan's amount bounds or negative elapsed months.
var ErrInvalidScenario = errors.New("invalid scenario")

// DecisionKind distinguishes a matched rule from the permissive fallback.
// Callers should treat DecisionDefault as an authoring gap worth flagging even
// though the computation proceeds normally.
type DecisionKind string

const (
	DecisionMaturity  DecisionKind = "maturity"
	DecisionPremature DecisionKind = "premature"
	DecisionDefault   DecisionKind = "default"
)

// defaultPenaltyRate applies when no premature rule covers the withdrawal
// month: base rate minus a flat 1% of principal.
var defaultPenaltyRate = decimal.NewFromFloat(0.01)

var monthsPerYear = decimal.NewFromInt(12)

// Decision is the resolved rate/penalty triple for one withdrawal scenario.
type Decision struct {
	Kind         DecisionKind    `json:"kind"`
	Rate         decimal.Decimal `json:"rate"`
	PenaltyRate  decimal.Decimal `json:"penalty_rate"`
	PenaltyFixed decimal.Decimal `json:"penalty_fixed"`
}

// MaturityResult is the simple-interest breakdown for a resolved decision.
type MaturityResult struct {
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	MonthlyRate    decimal.Decimal `json:"monthly_rate"`
	GrossInterest  decimal.Decimal `json:"gross_interest"`
	PenaltyOnRate  decimal.Decimal `json:"penalty_on_rate"`
	PenaltyFixed   decimal.Decimal `json:"penalty_fixed"`
	TotalPenalty   decimal.Decimal `json:"total_penalty"`
	NetInterest    decimal.Decimal `json:"net_interest"`
	MaturityAmount decimal.Decimal `json:"maturity_amount"`
}

// Resolve selects the single applicable rule for a withdrawal at
// withdrawalMonths elapsed months. It never fails: at or past the full tenure
// the maturity rule wins unconditionally, before that the first matching
// premature rule (in the given order) wins, and a coverage gap degrades to the
// default decision rather than an error.
func Resolve(terms PlanTerms, rules []Rule, withdrawalMonths int) Decision {
	var maturity *Rule
	for i := range rules {
		if rules[i].Kind == RuleMaturity {
			maturity = &rules[i]
			break
		}
	}

	if withdrawalMonths >= terms.TenureMonths && maturity != nil {
		return Decision{
			Kind:         DecisionMaturity,
			Rate:         maturity.Rate,
			PenaltyRate:  decimal.Zero,
			PenaltyFixed: decimal.Zero,
		}
	}

	for _, rule := range rules {
		if rule.Matches(withdrawalMonths) {
			return Decision{
				Kind:         DecisionPremature,
				Rate:         rule.Rate,
				PenaltyRate:  rule.PenaltyRate,
				PenaltyFixed: rule.PenaltyFixed,
			}
		}
	}

	return Decision{
		Kind:         DecisionDefault,
		Rate:         terms.BaseRate,
		PenaltyRate:  defaultPenaltyRate,
		PenaltyFixed: decimal.Zero,
	}
}

// ComputeMaturity turns a decision into a maturity value for a principal held
// withdrawalMonths months. Simple non-compounding interest, linear in elapsed
// months. Net interest is floored at zero and the maturity amount at the
// principal, so penalties can never pay out less than the deposit.
func ComputeMaturity(terms PlanTerms, decision Decision, principal decimal.Decimal, withdrawalMonths int) (MaturityResult, error) {
	if withdrawalMonths < 0 {
		return MaturityResult{}, fmt.Errorf("%w: withdrawal_months must not be negative", ErrInvalidScenario)
	}
	if principal.LessThan(terms.MinimumAmount) {
		return MaturityResult{}, fmt.Errorf("%w: principal below plan minimum %s", ErrInvalidScenario, terms.MinimumAmount.String())
	}
	if terms.MaximumAmount != nil && principal.GreaterThan(*terms.MaximumAmount) {
		return MaturityResult{}, fmt.Errorf("%w: principal above plan maximum %s", ErrInvalidScenario, terms.MaximumAmount.String())
	}

	monthly := decision.Rate.Div(monthsPerYear)
	gross := principal.Mul(monthly).Mul(decimal.NewFromInt(int64(withdrawalMonths)))
	penaltyOnRate := principal.Mul(decision.PenaltyRate)
	totalPenalty := penaltyOnRate.Add(decision.PenaltyFixed)

	net := gross.Sub(totalPenalty)
	if net.LessThan(decimal.Zero) {
		net = decimal.Zero
	}
	maturity := principal.Add(net)
	if maturity.LessThan(principal) {
		maturity = principal
	}

	return MaturityResult{
		AnnualRate:     decision.Rate,
		MonthlyRate:    monthly,
		GrossInterest:  gross,
		PenaltyOnRate:  penaltyOnRate,
		PenaltyFixed:   decision.PenaltyFixed,
		TotalPenalty:   totalPenalty,
		NetInterest:    net,
		MaturityAmount: maturity,
	}, nil
}
