package models

import (
	"time"

	"github.com/shopspring/decimal"

	"fdcatalog/internal/rateengine"
)

// Plan is a fixed-deposit product. BaseRate and all rule rates are stored as
// annual fractions (0.07 = 7%); unit conversion happens at the ingestion
// boundary, never here.
type Plan struct {
	ID            uint64           `gorm:"primaryKey;autoIncrement" json:"id"`
	BankID        uint64           `gorm:"not null;index" json:"bank_id"`
	Name          string           `gorm:"type:varchar(255);not null;index" json:"name"`
	MinimumAmount decimal.Decimal  `gorm:"type:numeric(15,2);not null" json:"minimum_amount"`
	MaximumAmount *decimal.Decimal `gorm:"type:numeric(15,2)" json:"maximum_amount,omitempty"`
	TenureMonths  int              `gorm:"not null" json:"tenure_months"`
	BaseRate      decimal.Decimal  `gorm:"type:numeric(6,4);not null" json:"base_rate"`
	Description   *string          `gorm:"type:text" json:"description,omitempty"`
	IsActive      bool             `gorm:"not null;default:true;index" json:"is_active"`

	Bank  *Bank      `gorm:"foreignKey:BankID" json:"bank,omitempty"`
	Rules []RateRule `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"rules,omitempty"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (Plan) TableName() string {
	return "fd_plans"
}

// Terms snapshots the plan fields the rate engine needs.
func (p Plan) Terms() rateengine.PlanTerms {
	return rateengine.PlanTerms{
		TenureMonths:  p.TenureMonths,
		BaseRate:      p.BaseRate,
		MinimumAmount: p.MinimumAmount,
		MaximumAmount: p.MaximumAmount,
	}
}

// EngineRules converts the plan's stored rules into engine rules, already in
// the deterministic resolution order.
func (p Plan) EngineRules() []rateengine.Rule {
	rules := make([]rateengine.Rule, 0, len(p.Rules))
	for _, r := range p.Rules {
		rules = append(rules, r.EngineRule())
	}
	rateengine.SortRules(rules)
	return rules
}
