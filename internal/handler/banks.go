package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fdcatalog/internal/models"
	"fdcatalog/internal/repository"
)

type BankHandler struct {
	Repo   repository.Repository
	Logger *zap.Logger
}

func (h *BankHandler) Register(r *gin.Engine) {
	group := r.Group("/api/banks")
	group.POST("", h.createBank)
	group.GET("", h.listBanks)
	group.GET("/:id", h.getBank)
	group.PUT("/:id", h.updateBank)
	group.DELETE("/:id", h.deleteBank)
	group.PATCH("/:id/toggle-active", h.toggleBankActive)
	group.GET("/:id/fd-plans", h.listBankPlans)
}

type bankRequest struct {
	Name          string  `json:"name"`
	Code          string  `json:"code"`
	Description   *string `json:"description"`
	ContactPerson *string `json:"contact_person"`
	Email         *string `json:"email"`
	Phone         *string `json:"phone"`
	Address       *string `json:"address"`
	IsActive      *bool   `json:"is_active"`
}

// @Summary Create bank
// @Tags banks
// @Accept json
// @Param body body bankRequest true "bank"
// @Success 201 {object} apiResponse
// @Router /api/banks [post]
func (h *BankHandler) createBank(c *gin.Context) {
	var req bankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload: "+err.Error(), nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)
	if req.Name == "" || req.Code == "" {
		Error(c, http.StatusBadRequest, "name and code are required", nil)
		return
	}

	ctx := c.Request.Context()
	if existing, err := h.Repo.GetBankByCode(ctx, req.Code); err == nil && existing != nil {
		Error(c, http.StatusBadRequest, "bank code already exists", nil)
		return
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.fail(c, "check bank code", err)
		return
	}
	if existing, err := h.Repo.GetBankByName(ctx, req.Name); err == nil && existing != nil {
		Error(c, http.StatusBadRequest, "bank name already exists", nil)
		return
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.fail(c, "check bank name", err)
		return
	}

	item := &models.Bank{
		Name:          req.Name,
		Code:          req.Code,
		Description:   req.Description,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
		IsActive:      true,
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
	if err := h.Repo.CreateBank(ctx, item); err != nil {
		h.fail(c, "create bank", err)
		return
	}
	Created(c, item)
}

// @Summary List banks
// @Tags banks
// @Param is_active query bool false "filter by active flag"
// @Param search query string false "match name or code"
// @Param order_by query string false "name|code|created_at"
// @Param asc query bool false "ascending order"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/banks [get]
func (h *BankHandler) listBanks(c *gin.Context) {
	params := repository.ListBanksParams{
		IsActive: boolQueryPtr(c, "is_active"),
		Search:   strQueryPtr(c, "search"),
		OrderBy: parseOrder(c.Query("order_by"), map[string]string{
			"name":       "name",
			"code":       "code",
			"created_at": "created_at",
		}),
		Asc:    boolQueryPtr(c, "asc"),
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}

	ctx := c.Request.Context()
	items, err := h.Repo.ListBanks(ctx, params)
	if err != nil {
		h.fail(c, "list banks", err)
		return
	}
	total, err := h.Repo.CountBanks(ctx, params)
	if err != nil {
		h.fail(c, "count banks", err)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

// @Summary Get bank
// @Tags banks
// @Param id path int true "bank id"
// @Success 200 {object} apiResponse
// @Router /api/banks/{id} [get]
func (h *BankHandler) getBank(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid bank id", nil)
		return
	}
	item, err := h.Repo.GetBankByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "bank not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get bank", err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Update bank
// @Tags banks
// @Accept json
// @Param id path int true "bank id"
// @Param body body bankRequest true "bank"
// @Success 200 {object} apiResponse
// @Router /api/banks/{id} [put]
func (h *BankHandler) updateBank(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid bank id", nil)
		return
	}
	var req bankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload: "+err.Error(), nil)
		return
	}

	ctx := c.Request.Context()
	item, err := h.Repo.GetBankByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "bank not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get bank", err)
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != item.Name {
		if existing, err := h.Repo.GetBankByName(ctx, name); err == nil && existing != nil && existing.ID != id {
			Error(c, http.StatusBadRequest, "bank name already exists", nil)
			return
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			h.fail(c, "check bank name", err)
			return
		}
		item.Name = name
	}
	if code := strings.TrimSpace(req.Code); code != "" && code != item.Code {
		if existing, err := h.Repo.GetBankByCode(ctx, code); err == nil && existing != nil && existing.ID != id {
			Error(c, http.StatusBadRequest, "bank code already exists", nil)
			return
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			h.fail(c, "check bank code", err)
			return
		}
		item.Code = code
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.ContactPerson != nil {
		item.ContactPerson = req.ContactPerson
	}
	if req.Email != nil {
		item.Email = req.Email
	}
	if req.Phone != nil {
		item.Phone = req.Phone
	}
	if req.Address != nil {
		item.Address = req.Address
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := h.Repo.UpdateBank(ctx, item); err != nil {
		h.fail(c, "update bank", err)
		return
	}
	Ok(c, item, nil)
}

// @Summary Delete bank
// @Tags banks
// @Param id path int true "bank id"
// @Success 200 {object} apiResponse
// @Router /api/banks/{id} [delete]
func (h *BankHandler) deleteBank(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid bank id", nil)
		return
	}
	err := h.Repo.DeleteBank(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "bank not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "delete bank", err)
		return
	}
	Ok(c, gin.H{"deleted": id}, nil)
}

// @Summary Toggle bank active flag
// @Tags banks
// @Param id path int true "bank id"
// @Success 200 {object} apiResponse
// @Router /api/banks/{id}/toggle-active [patch]
func (h *BankHandler) toggleBankActive(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid bank id", nil)
		return
	}
	ctx := c.Request.Context()
	item, err := h.Repo.GetBankByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "bank not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get bank", err)
		return
	}
	item.IsActive = !item.IsActive
	if err := h.Repo.UpdateBank(ctx, item); err != nil {
		h.fail(c, "toggle bank", err)
		return
	}
	Ok(c, item, nil)
}

// @Summary List a bank's FD plans
// @Tags banks
// @Param id path int true "bank id"
// @Param active_only query bool false "only active plans (default true)"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/banks/{id}/fd-plans [get]
func (h *BankHandler) listBankPlans(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid bank id", nil)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.Repo.GetBankByID(ctx, id); errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "bank not found", nil)
		return
	} else if err != nil {
		h.fail(c, "get bank", err)
		return
	}

	params := repository.ListPlansParams{
		BankID: &id,
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}
	activeOnly := true
	if v := boolQueryPtr(c, "active_only"); v != nil {
		activeOnly = *v
	}
	if activeOnly {
		active := true
		params.IsActive = &active
	}

	items, err := h.Repo.ListPlans(ctx, params)
	if err != nil {
		h.fail(c, "list bank plans", err)
		return
	}
	total, err := h.Repo.CountPlans(ctx, params)
	if err != nil {
		h.fail(c, "count bank plans", err)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

func (h *BankHandler) fail(c *gin.Context, op string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(op+" failed", zap.Error(err))
	}
	Error(c, http.StatusInternalServerError, err.Error(), nil)
}
