package rateengine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RuleKind tags a tenure rule as the single maturity rule or one of the
// premature-withdrawal ranges.
type RuleKind string

const (
	RuleMaturity  RuleKind = "maturity"
	RulePremature RuleKind = "premature"
)

// PlanTerms is the resolution-time snapshot of a plan. It is deliberately
// decoupled from the storage model so the engine stays free of I/O concerns.
type PlanTerms struct {
	TenureMonths  int              `json:"tenure_months"`
	BaseRate      decimal.Decimal  `json:"base_rate"`
	MinimumAmount decimal.Decimal  `json:"minimum_amount"`
	MaximumAmount *decimal.Decimal `json:"maximum_amount,omitempty"`
}

// Rule is a single tenure condition. Rates are annual fractions (0.07 means
// 7%); callers that receive percentages must convert before constructing a
// Rule. The engine never guesses units.
//
// For premature rules the interval is half-open: [MinTenureMonths,
// MaxTenureMonths). A nil MaxTenureMonths means "and beyond, up to the full
// tenure". Maturity rules carry no bounds.
type Rule struct {
	Kind            RuleKind        `json:"kind"`
	MinTenureMonths *int            `json:"min_tenure_months,omitempty"`
	MaxTenureMonths *int            `json:"max_tenure_months,omitempty"`
	Rate            decimal.Decimal `json:"rate"`
	PenaltyRate     decimal.Decimal `json:"penalty_rate"`
	PenaltyFixed    decimal.Decimal `json:"penalty_fixed"`
}

// Matches reports whether a premature rule covers the given elapsed months.
// Always false for maturity rules; the maturity case is decided by the
// resolver against the plan tenure, not by the rule itself.
func (r Rule) Matches(withdrawalMonths int) bool {
	if r.Kind != RulePremature || r.MinTenureMonths == nil {
		return false
	}
	if withdrawalMonths < *r.MinTenureMonths {
		return false
	}
	return r.MaxTenureMonths == nil || withdrawalMonths < *r.MaxTenureMonths
}

// SortRules orders premature rules by ascending MinTenureMonths, preserving
// the given order for equal mins. Overlapping ranges are legal input and the
// resolver is first-match-wins, so callers should sort once at authoring or
// load time to make resolution deterministic.
func SortRules(rules []Rule) {
	sort.SliceStable(rules, func(i, j int) bool {
		a, b := rules[i], rules[j]
		if a.Kind != b.Kind {
			return a.Kind == RuleMaturity
		}
		if a.MinTenureMonths == nil || b.MinTenureMonths == nil {
			return b.MinTenureMonths == nil && a.MinTenureMonths != nil
		}
		return *a.MinTenureMonths < *b.MinTenureMonths
	})
}
