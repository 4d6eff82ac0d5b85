package gormrepository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"fdcatalog/internal/models"
	"fdcatalog/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(fn)
}

// --- Banks ------------------------------------------------------------------

func (s *Store) CreateBank(ctx context.Context, item *models.Bank) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetBankByID(ctx context.Context, id uint64) (*models.Bank, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Bank
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetBankByCode(ctx context.Context, code string) (*models.Bank, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, repository.ErrNotFound
	}
	var item models.Bank
	err := s.db.WithContext(ctx).First(&item, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetBankByName(ctx context.Context, name string) (*models.Bank, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, repository.ErrNotFound
	}
	var item models.Bank
	err := s.db.WithContext(ctx).First(&item, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func bankListQuery(db *gorm.DB, params repository.ListBanksParams) *gorm.DB {
	query := db.Model(&models.Bank{})
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.Search != nil && strings.TrimSpace(*params.Search) != "" {
		term := "%" + strings.TrimSpace(*params.Search) + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", term, term)
	}
	return query
}

func (s *Store) ListBanks(ctx context.Context, params repository.ListBanksParams) ([]models.Bank, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := bankListQuery(s.db.WithContext(ctx), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "id")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Bank
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountBanks(ctx context.Context, params repository.ListBanksParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := bankListQuery(s.db.WithContext(ctx), params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateBank(ctx context.Context, item *models.Bank) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteBank(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	res := s.db.WithContext(ctx).Delete(&models.Bank{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// --- Plans ------------------------------------------------------------------

// CreatePlanWithRules stores the plan and its nested rules in one transaction.
func (s *Store) CreatePlanWithRules(ctx context.Context, plan *models.Plan) error {
	if s == nil || s.db == nil || plan == nil {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(plan).Error
	})
}

func (s *Store) GetPlanByID(ctx context.Context, id uint64) (*models.Plan, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Plan
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetPlanWithRules(ctx context.Context, id uint64) (*models.Plan, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.Plan
	err := s.db.WithContext(ctx).
		Preload("Rules", func(db *gorm.DB) *gorm.DB {
			return db.Order("kind asc, min_tenure_months asc NULLS FIRST, id asc")
		}).
		Preload("Bank").
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetPlanByBankAndName(ctx context.Context, bankID uint64, name string) (*models.Plan, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, repository.ErrNotFound
	}
	var item models.Plan
	err := s.db.WithContext(ctx).First(&item, "bank_id = ? AND name = ?", bankID, name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func planListQuery(db *gorm.DB, params repository.ListPlansParams) *gorm.DB {
	query := db.Model(&models.Plan{})
	if params.BankID != nil {
		query = query.Where("bank_id = ?", *params.BankID)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.TenureMonths != nil {
		query = query.Where("tenure_months = ?", *params.TenureMonths)
	}
	if params.Search != nil && strings.TrimSpace(*params.Search) != "" {
		term := "%" + strings.TrimSpace(*params.Search) + "%"
		query = query.Where("name ILIKE ?", term)
	}
	return query
}

func (s *Store) ListPlans(ctx context.Context, params repository.ListPlansParams) ([]models.Plan, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := planListQuery(s.db.WithContext(ctx), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "id")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.Plan
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountPlans(ctx context.Context, params repository.ListPlansParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := planListQuery(s.db.WithContext(ctx), params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdatePlan(ctx context.Context, item *models.Plan) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Omit("Rules", "Bank").Save(item).Error
}

func (s *Store) SetPlanActive(ctx context.Context, id uint64, active bool) error {
	if s == nil || s.db == nil {
		return nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Plan{}).
		Where("id = ?", id).
		Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (s *Store) DeletePlan(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	res := s.db.WithContext(ctx).Delete(&models.Plan{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// --- Rate rules -------------------------------------------------------------

func (s *Store) CreateRateRule(ctx context.Context, item *models.RateRule) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetRateRuleByID(ctx context.Context, id uint64) (*models.RateRule, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.RateRule
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) ListRateRulesByPlanID(ctx context.Context, planID uint64) ([]models.RateRule, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var items []models.RateRule
	if err := s.db.WithContext(ctx).
		Model(&models.RateRule{}).
		Where("plan_id = ?", planID).
		Order("kind asc, min_tenure_months asc NULLS FIRST, id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) UpdateRateRule(ctx context.Context, item *models.RateRule) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *Store) DeleteRateRule(ctx context.Context, id uint64) error {
	if s == nil || s.db == nil {
		return nil
	}
	res := s.db.WithContext(ctx).Delete(&models.RateRule{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// --- Sheet uploads ----------------------------------------------------------

func (s *Store) CreateUpload(ctx context.Context, item *models.SheetUpload) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) GetUploadByID(ctx context.Context, id uint64) (*models.SheetUpload, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SheetUpload
	err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) GetUploadWithErrors(ctx context.Context, id uint64) (*models.SheetUpload, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	var item models.SheetUpload
	err := s.db.WithContext(ctx).
		Preload("Errors", func(db *gorm.DB) *gorm.DB {
			return db.Order("row_number asc, id asc")
		}).
		First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func uploadListQuery(db *gorm.DB, params repository.ListUploadsParams) *gorm.DB {
	query := db.Model(&models.SheetUpload{})
	if params.BankID != nil {
		query = query.Where("bank_id = ?", *params.BankID)
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	return query
}

func (s *Store) ListUploads(ctx context.Context, params repository.ListUploadsParams) ([]models.SheetUpload, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := uploadListQuery(s.db.WithContext(ctx), params)
	query = applyOrder(query, params.OrderBy, params.Asc, "uploaded_at")
	limit := normalizeLimit(params.Limit, 100)
	offset := normalizeOffset(params.Offset)
	var items []models.SheetUpload
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountUploads(ctx context.Context, params repository.ListUploadsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := uploadListQuery(s.db.WithContext(ctx), params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) UpdateUpload(ctx context.Context, item *models.SheetUpload) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Omit("Errors").Save(item).Error
}

func (s *Store) InsertUploadErrors(ctx context.Context, items []models.UploadError) error {
	if s == nil || s.db == nil || len(items) == 0 {
		return nil
	}
	return createInBatches(s.db.WithContext(ctx), items, 200)
}

// FailStaleUploads marks processing runs that never finished as failed.
func (s *Store) FailStaleUploads(ctx context.Context, olderThan time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if olderThan.IsZero() {
		olderThan = time.Now().UTC()
	}
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).
		Model(&models.SheetUpload{}).
		Where("status IN ?", []string{models.UploadStatusPending, models.UploadStatusProcessing}).
		Where("uploaded_at < ?", olderThan).
		Updates(map[string]any{
			"status":        models.UploadStatusFailed,
			"error_details": "processing did not finish",
			"processed_at":  now,
		})
	return res.RowsAffected, res.Error
}

// --- Helpers ----------------------------------------------------------------

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "desc"
	if asc != nil && *asc {
		direction = "asc"
	}
	return query.Order(column + " " + direction)
}

func createInBatches[T any](db *gorm.DB, items []T, batchSize int) error {
	if len(items) == 0 {
		return nil
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		if err := db.CreateInBatches(items[i:end], batchSize).Error; err != nil {
			return err
		}
	}
	return nil
}

func normalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
