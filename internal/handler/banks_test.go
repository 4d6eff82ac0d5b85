package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"fdcatalog/internal/models"
	"fdcatalog/internal/repository"
)

type fakeBankRepo struct {
	repository.Repository
	bank       *models.Bank
	conflict   *models.Bank
	plans      []models.Plan
	lastParams repository.ListPlansParams
	created    *models.Bank
	updated    *models.Bank
}

func (f *fakeBankRepo) GetBankByID(ctx context.Context, id uint64) (*models.Bank, error) {
	if f.bank == nil || f.bank.ID != id {
		return nil, repository.ErrNotFound
	}
	return f.bank, nil
}

func (f *fakeBankRepo) GetBankByCode(ctx context.Context, code string) (*models.Bank, error) {
	if f.bank != nil && f.bank.Code == code {
		return f.bank, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBankRepo) GetBankByName(ctx context.Context, name string) (*models.Bank, error) {
	if f.bank != nil && f.bank.Name == name {
		return f.bank, nil
	}
	if f.conflict != nil && f.conflict.Name == name {
		return f.conflict, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeBankRepo) CreateBank(ctx context.Context, item *models.Bank) error {
	f.created = item
	return nil
}

func (f *fakeBankRepo) UpdateBank(ctx context.Context, item *models.Bank) error {
	f.updated = item
	return nil
}

func (f *fakeBankRepo) ListPlans(ctx context.Context, params repository.ListPlansParams) ([]models.Plan, error) {
	f.lastParams = params
	return f.plans, nil
}

func (f *fakeBankRepo) CountPlans(ctx context.Context, params repository.ListPlansParams) (int64, error) {
	return int64(len(f.plans)), nil
}

func testBank() *models.Bank {
	return &models.Bank{ID: 1, Name: "First National", Code: "FNB", IsActive: true}
}

func newBankRouter(bank *models.Bank) (*gin.Engine, *fakeBankRepo) {
	gin.SetMode(gin.TestMode)
	repo := &fakeBankRepo{bank: bank}
	engine := gin.New()
	h := &BankHandler{Repo: repo}
	h.Register(engine)
	return engine, repo
}

func TestListBankPlans_DefaultsToActiveOnly(t *testing.T) {
	engine, repo := newBankRouter(testBank())
	repo.plans = []models.Plan{{ID: 1, BankID: 1, Name: "Test Plan", IsActive: true}}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/banks/1/fd-plans", nil)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.lastParams.BankID == nil || *repo.lastParams.BankID != 1 {
		t.Fatalf("bank filter not applied: %+v", repo.lastParams.BankID)
	}
	if repo.lastParams.IsActive == nil || !*repo.lastParams.IsActive {
		t.Fatal("active_only should default to true")
	}
}

func TestListBankPlans_ActiveOnlyFalseListsAll(t *testing.T) {
	engine, repo := newBankRouter(testBank())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/banks/1/fd-plans?active_only=false", nil)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.lastParams.IsActive != nil {
		t.Fatalf("active filter should be unset, got %v", *repo.lastParams.IsActive)
	}
}

func TestListBankPlans_BankNotFound(t *testing.T) {
	engine, _ := newBankRouter(testBank())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/banks/99/fd-plans", nil)
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d want 404", w.Code)
	}
}

func TestCreateBank_DuplicateNameRejected(t *testing.T) {
	engine, repo := newBankRouter(testBank())

	w := doJSON(engine, http.MethodPost, "/api/banks", `{"name":"First National","code":"OTH"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400, body=%s", w.Code, w.Body.String())
	}
	if repo.created != nil {
		t.Fatal("duplicate bank must not be stored")
	}
}

func TestCreateBank_DuplicateCodeRejected(t *testing.T) {
	engine, repo := newBankRouter(testBank())

	w := doJSON(engine, http.MethodPost, "/api/banks", `{"name":"Second National","code":"FNB"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400, body=%s", w.Code, w.Body.String())
	}
	if repo.created != nil {
		t.Fatal("duplicate bank must not be stored")
	}
}

func TestUpdateBank_DuplicateNameRejected(t *testing.T) {
	engine, repo := newBankRouter(&models.Bank{ID: 2, Name: "Second National", Code: "SNB", IsActive: true})
	// Another bank already owns the target name.
	repo.conflict = testBank()

	w := doJSON(engine, http.MethodPut, "/api/banks/2", `{"name":"First National"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d want 400, body=%s", w.Code, w.Body.String())
	}
	if repo.updated != nil {
		t.Fatal("conflicting rename must not be stored")
	}
}
