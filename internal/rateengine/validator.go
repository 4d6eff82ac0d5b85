package rateengine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Severity splits structural defects (which should block authoring) from
// advisory findings the resolver tolerates at runtime.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

type Violation struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

// HasErrors reports whether any violation is fatal to authoring.
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate checks a candidate rule collection for a plan. Pure function:
// it returns the full list of violations and never errors or panics.
//
// Errors: zero or more than one maturity rule, a premature rule without a
// lower bound, a maturity rule carrying tenure bounds, max < min, any
// negative rate or amount. Warnings: premature intervals that overlap each
// other or leave a gap below the plan tenure. Overlap and gap behavior at
// resolution time is defined by Resolve (first match wins, default fallback),
// so those findings are advisory only.
func Validate(terms PlanTerms, rules []Rule) []Violation {
	var out []Violation

	if terms.TenureMonths <= 0 {
		out = append(out, Violation{
			Severity: SeverityError,
			Field:    "tenure_months",
			Message:  "tenure_months must be positive",
		})
	}
	if terms.BaseRate.LessThan(decimal.Zero) {
		out = append(out, Violation{
			Severity: SeverityError,
			Field:    "base_rate",
			Message:  "base_rate must not be negative",
		})
	}
	if terms.MinimumAmount.LessThan(decimal.Zero) {
		out = append(out, Violation{
			Severity: SeverityError,
			Field:    "minimum_amount",
			Message:  "minimum_amount must not be negative",
		})
	}
	if terms.MaximumAmount != nil && terms.MaximumAmount.LessThan(terms.MinimumAmount) {
		out = append(out, Violation{
			Severity: SeverityError,
			Field:    "maximum_amount",
			Message:  "maximum_amount must be >= minimum_amount",
		})
	}

	maturityCount := 0
	var premature []Rule
	for i, rule := range rules {
		switch rule.Kind {
		case RuleMaturity:
			maturityCount++
			if rule.MinTenureMonths != nil || rule.MaxTenureMonths != nil {
				out = append(out, Violation{
					Severity: SeverityError,
					Field:    fmt.Sprintf("rules[%d]", i),
					Message:  "maturity rule must not carry tenure bounds",
				})
			}
		case RulePremature:
			if rule.MinTenureMonths == nil {
				out = append(out, Violation{
					Severity: SeverityError,
					Field:    fmt.Sprintf("rules[%d].min_tenure_months", i),
					Message:  "premature rule requires min_tenure_months",
				})
				continue
			}
			if *rule.MinTenureMonths < 0 {
				out = append(out, Violation{
					Severity: SeverityError,
					Field:    fmt.Sprintf("rules[%d].min_tenure_months", i),
					Message:  "min_tenure_months must not be negative",
				})
			}
			if rule.MaxTenureMonths != nil && *rule.MaxTenureMonths < *rule.MinTenureMonths {
				out = append(out, Violation{
					Severity: SeverityError,
					Field:    fmt.Sprintf("rules[%d].max_tenure_months", i),
					Message:  "max_tenure_months must be >= min_tenure_months",
				})
			}
			premature = append(premature, rule)
		default:
			out = append(out, Violation{
				Severity: SeverityError,
				Field:    fmt.Sprintf("rules[%d].kind", i),
				Message:  fmt.Sprintf("unknown rule kind %q", rule.Kind),
			})
		}

		if rule.Rate.LessThan(decimal.Zero) {
			out = append(out, Violation{
				Severity: SeverityError,
				Field:    fmt.Sprintf("rules[%d].rate", i),
				Message:  "rate must not be negative",
			})
		}
		if rule.PenaltyRate.LessThan(decimal.Zero) {
			out = append(out, Violation{
				Severity: SeverityError,
				Field:    fmt.Sprintf("rules[%d].penalty_rate", i),
				Message:  "penalty_rate must not be negative",
			})
		}
		if rule.PenaltyFixed.LessThan(decimal.Zero) {
			out = append(out, Violation{
				Severity: SeverityError,
				Field:    fmt.Sprintf("rules[%d].penalty_fixed", i),
				Message:  "penalty_fixed must not be negative",
			})
		}
	}

	switch {
	case maturityCount == 0:
		out = append(out, Violation{
			Severity: SeverityError,
			Field:    "rules",
			Message:  "exactly one maturity rule required, found none",
		})
	case maturityCount > 1:
		out = append(out, Violation{
			Severity: SeverityError,
			Field:    "rules",
			Message:  fmt.Sprintf("exactly one maturity rule required, found %d", maturityCount),
		})
	}

	out = append(out, coverageFindings(terms, premature)...)
	return out
}

// coverageFindings walks the premature intervals in ascending min order and
// flags overlaps and gaps below the plan tenure.
func coverageFindings(terms PlanTerms, premature []Rule) []Violation {
	bounded := make([]Rule, 0, len(premature))
	for _, rule := range premature {
		if rule.MinTenureMonths != nil {
			bounded = append(bounded, rule)
		}
	}
	if len(bounded) == 0 {
		if terms.TenureMonths > 0 {
			return []Violation{{
				Severity: SeverityWarning,
				Field:    "rules",
				Message:  fmt.Sprintf("no premature coverage for [0, %d) months; resolver falls back to the default decision", terms.TenureMonths),
			}}
		}
		return nil
	}

	sort.SliceStable(bounded, func(i, j int) bool {
		return *bounded[i].MinTenureMonths < *bounded[j].MinTenureMonths
	})

	var out []Violation
	cursor := 0
	for _, rule := range bounded {
		min := *rule.MinTenureMonths
		if min > cursor {
			out = append(out, Violation{
				Severity: SeverityWarning,
				Field:    "rules",
				Message:  fmt.Sprintf("premature coverage gap for [%d, %d) months", cursor, min),
			})
		}
		if min < cursor {
			out = append(out, Violation{
				Severity: SeverityWarning,
				Field:    "rules",
				Message:  fmt.Sprintf("premature intervals overlap at %d months; first match in stored order wins", min),
			})
		}
		if rule.MaxTenureMonths == nil {
			cursor = terms.TenureMonths
			continue
		}
		if *rule.MaxTenureMonths > cursor {
			cursor = *rule.MaxTenureMonths
		}
	}
	if cursor < terms.TenureMonths {
		out = append(out, Violation{
			Severity: SeverityWarning,
			Field:    "rules",
			Message:  fmt.Sprintf("premature coverage gap for [%d, %d) months", cursor, terms.TenureMonths),
		})
	}
	return out
}
