package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"fdcatalog/internal/models"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

type ListBanksParams struct {
	IsActive *bool
	Search   *string
	OrderBy  string
	Asc      *bool
	Limit    int
	Offset   int
}

type ListPlansParams struct {
	BankID       *uint64
	IsActive     *bool
	Search       *string
	TenureMonths *int
	OrderBy      string
	Asc          *bool
	Limit        int
	Offset       int
}

type ListUploadsParams struct {
	BankID  *uint64
	Status  *string
	OrderBy string
	Asc     *bool
	Limit   int
	Offset  int
}

type Repository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error

	// Banks.
	CreateBank(ctx context.Context, item *models.Bank) error
	GetBankByID(ctx context.Context, id uint64) (*models.Bank, error)
	GetBankByCode(ctx context.Context, code string) (*models.Bank, error)
	GetBankByName(ctx context.Context, name string) (*models.Bank, error)
	ListBanks(ctx context.Context, params ListBanksParams) ([]models.Bank, error)
	CountBanks(ctx context.Context, params ListBanksParams) (int64, error)
	UpdateBank(ctx context.Context, item *models.Bank) error
	DeleteBank(ctx context.Context, id uint64) error

	// Plans.
	CreatePlanWithRules(ctx context.Context, plan *models.Plan) error
	GetPlanByID(ctx context.Context, id uint64) (*models.Plan, error)
	GetPlanWithRules(ctx context.Context, id uint64) (*models.Plan, error)
	GetPlanByBankAndName(ctx context.Context, bankID uint64, name string) (*models.Plan, error)
	ListPlans(ctx context.Context, params ListPlansParams) ([]models.Plan, error)
	CountPlans(ctx context.Context, params ListPlansParams) (int64, error)
	UpdatePlan(ctx context.Context, item *models.Plan) error
	SetPlanActive(ctx context.Context, id uint64, active bool) error
	DeletePlan(ctx context.Context, id uint64) error

	// Rate rules.
	CreateRateRule(ctx context.Context, item *models.RateRule) error
	GetRateRuleByID(ctx context.Context, id uint64) (*models.RateRule, error)
	ListRateRulesByPlanID(ctx context.Context, planID uint64) ([]models.RateRule, error)
	UpdateRateRule(ctx context.Context, item *models.RateRule) error
	DeleteRateRule(ctx context.Context, id uint64) error

	// Sheet uploads.
	CreateUpload(ctx context.Context, item *models.SheetUpload) error
	GetUploadByID(ctx context.Context, id uint64) (*models.SheetUpload, error)
	GetUploadWithErrors(ctx context.Context, id uint64) (*models.SheetUpload, error)
	ListUploads(ctx context.Context, params ListUploadsParams) ([]models.SheetUpload, error)
	CountUploads(ctx context.Context, params ListUploadsParams) (int64, error)
	UpdateUpload(ctx context.Context, item *models.SheetUpload) error
	InsertUploadErrors(ctx context.Context, items []models.UploadError) error
	FailStaleUploads(ctx context.Context, olderThan time.Time) (int64, error)
}
