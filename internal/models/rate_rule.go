package models

import (
	"time"

	"github.com/shopspring/decimal"

	"fdcatalog/internal/rateengine"
)

// RateRule is one stored tenure condition of a plan. Kind is "maturity" or
// "premature"; premature rules cover the half-open interval
// [MinTenureMonths, MaxTenureMonths) with a nil max meaning unbounded.
type RateRule struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID          uint64          `gorm:"not null;index" json:"plan_id"`
	Kind            string          `gorm:"type:varchar(20);not null;index" json:"kind"`
	MinTenureMonths *int            `json:"min_tenure_months,omitempty"`
	MaxTenureMonths *int            `json:"max_tenure_months,omitempty"`
	Rate            decimal.Decimal `gorm:"type:numeric(6,4);not null" json:"rate"`
	PenaltyRate     decimal.Decimal `gorm:"type:numeric(6,4);not null;default:0" json:"penalty_rate"`
	PenaltyFixed    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"penalty_fixed"`
	Description     *string         `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
}

func (RateRule) TableName() string {
	return "rate_rules"
}

func (r RateRule) EngineRule() rateengine.Rule {
	return rateengine.Rule{
		Kind:            rateengine.RuleKind(r.Kind),
		MinTenureMonths: r.MinTenureMonths,
		MaxTenureMonths: r.MaxTenureMonths,
		Rate:            r.Rate,
		PenaltyRate:     r.PenaltyRate,
		PenaltyFixed:    r.PenaltyFixed,
	}
}
