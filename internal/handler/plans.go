package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fdcatalog/internal/models"
	"fdcatalog/internal/rateengine"
	"fdcatalog/internal/repository"
	"fdcatalog/internal/service"
)

type PlanHandler struct {
	Repo   repository.Repository
	Plans  *service.PlanService
	Logger *zap.Logger
}

func (h *PlanHandler) Register(r *gin.Engine) {
	group := r.Group("/api/fd-plans")
	group.POST("", h.createPlan)
	group.GET("", h.listPlans)
	group.GET("/:id", h.getPlan)
	group.PUT("/:id", h.updatePlan)
	group.DELETE("/:id", h.deletePlan)
	group.PATCH("/:id/toggle-active", h.togglePlanActive)
	group.POST("/:id/rules", h.createRule)
	group.GET("/:id/rules", h.listRules)
	group.GET("/:id/validate", h.validatePlan)
	group.GET("/:id/calculate-interest", h.calculateInterest)
}

// Pointer fields distinguish "absent" from an explicit zero, which is a valid
// value for rates and amounts.
type ruleRequest struct {
	Kind            string           `json:"kind"`
	MinTenureMonths *int             `json:"min_tenure_months"`
	MaxTenureMonths *int             `json:"max_tenure_months"`
	Rate            *decimal.Decimal `json:"rate"`
	PenaltyRate     *decimal.Decimal `json:"penalty_rate"`
	PenaltyFixed    *decimal.Decimal `json:"penalty_fixed"`
	Description     *string          `json:"description"`
}

type planRequest struct {
	BankID        uint64           `json:"bank_id"`
	Name          string           `json:"name"`
	MinimumAmount *decimal.Decimal `json:"minimum_amount"`
	MaximumAmount *decimal.Decimal `json:"maximum_amount"`
	TenureMonths  int              `json:"tenure_months"`
	BaseRate      *decimal.Decimal `json:"base_rate"`
	Description   *string          `json:"description"`
	IsActive      *bool            `json:"is_active"`
	Rules         []ruleRequest    `json:"rules"`
}

func (r ruleRequest) toModel(planID uint64) models.RateRule {
	rule := models.RateRule{
		PlanID:          planID,
		Kind:            strings.ToLower(strings.TrimSpace(r.Kind)),
		MinTenureMonths: r.MinTenureMonths,
		MaxTenureMonths: r.MaxTenureMonths,
		Description:     r.Description,
	}
	if r.Rate != nil {
		rule.Rate = *r.Rate
	}
	if r.PenaltyRate != nil {
		rule.PenaltyRate = *r.PenaltyRate
	}
	if r.PenaltyFixed != nil {
		rule.PenaltyFixed = *r.PenaltyFixed
	}
	return rule
}

// violationsMeta shapes validator findings for a 400 body.
func violationsMeta(violations []rateengine.Violation) map[string]any {
	return map[string]any{"violations": violations}
}

// @Summary Create FD plan with rate rules
// @Tags fd-plans
// @Accept json
// @Param body body planRequest true "plan"
// @Success 201 {object} apiResponse
// @Router /api/fd-plans [post]
func (h *PlanHandler) createPlan(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload: "+err.Error(), nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		Error(c, http.StatusBadRequest, "name is required", nil)
		return
	}
	if req.MinimumAmount == nil || req.BaseRate == nil {
		Error(c, http.StatusBadRequest, "minimum_amount and base_rate are required", nil)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Repo.GetBankByID(ctx, req.BankID); errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "bank not found", nil)
		return
	} else if err != nil {
		h.fail(c, "get bank", err)
		return
	}
	if existing, err := h.Repo.GetPlanByBankAndName(ctx, req.BankID, req.Name); err == nil && existing != nil {
		Error(c, http.StatusBadRequest, "plan name already exists for this bank", nil)
		return
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		h.fail(c, "check plan name", err)
		return
	}

	plan := &models.Plan{
		BankID:        req.BankID,
		Name:          req.Name,
		MinimumAmount: *req.MinimumAmount,
		MaximumAmount: req.MaximumAmount,
		TenureMonths:  req.TenureMonths,
		BaseRate:      *req.BaseRate,
		Description:   req.Description,
		IsActive:      true,
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}
	for _, r := range req.Rules {
		plan.Rules = append(plan.Rules, r.toModel(0))
	}

	violations := rateengine.Validate(plan.Terms(), plan.EngineRules())
	if rateengine.HasErrors(violations) {
		Error(c, http.StatusBadRequest, "plan rules are invalid", violationsMeta(violations))
		return
	}

	if err := h.Repo.CreatePlanWithRules(ctx, plan); err != nil {
		h.fail(c, "create plan", err)
		return
	}
	if len(violations) > 0 {
		c.JSON(http.StatusCreated, apiResponse{Code: 0, Message: "ok", Data: plan, Meta: violationsMeta(violations)})
		return
	}
	Created(c, plan)
}

// @Summary List FD plans
// @Tags fd-plans
// @Param bank_id query int false "filter by bank"
// @Param is_active query bool false "filter by active flag"
// @Param tenure_months query int false "filter by tenure"
// @Param search query string false "match plan name"
// @Param order_by query string false "name|tenure_months|base_rate|created_at"
// @Param asc query bool false "ascending order"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/fd-plans [get]
func (h *PlanHandler) listPlans(c *gin.Context) {
	params := repository.ListPlansParams{
		BankID:       uint64QueryPtr(c, "bank_id"),
		IsActive:     boolQueryPtr(c, "is_active"),
		TenureMonths: intQueryPtr(c, "tenure_months"),
		Search:       strQueryPtr(c, "search"),
		OrderBy: parseOrder(c.Query("order_by"), map[string]string{
			"name":          "name",
			"tenure_months": "tenure_months",
			"base_rate":     "base_rate",
			"created_at":    "created_at",
		}),
		Asc:    boolQueryPtr(c, "asc"),
		Limit:  intQuery(c, "limit", 50),
		Offset: intQuery(c, "offset", 0),
	}

	ctx := c.Request.Context()
	items, err := h.Repo.ListPlans(ctx, params)
	if err != nil {
		h.fail(c, "list plans", err)
		return
	}
	total, err := h.Repo.CountPlans(ctx, params)
	if err != nil {
		h.fail(c, "count plans", err)
		return
	}
	Ok(c, items, paginationMeta(params.Limit, params.Offset, total))
}

// @Summary Get FD plan with its rate rules
// @Tags fd-plans
// @Param id path int true "plan id"
// @Success 200 {object} apiResponse
// @Router /api/fd-plans/{id} [get]
func (h *PlanHandler) getPlan(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	plan, err := h.Plans.LoadPlan(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "plan not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get plan", err)
		return
	}
	Ok(c, plan, nil)
}

// @Summary Update FD plan
// @Tags fd-plans
// @Accept json
// @Param id path int true "plan id"
// @Param body body planRequest true "plan fields"
// @Success 200 {object} apiResponse
// @Router /api/fd-plans/{id} [put]
func (h *PlanHandler) updatePlan(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload: "+err.Error(), nil)
		return
	}

	ctx := c.Request.Context()
	plan, err := h.Repo.GetPlanWithRules(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "plan not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get plan", err)
		return
	}

	if name := strings.TrimSpace(req.Name); name != "" && name != plan.Name {
		if existing, err := h.Repo.GetPlanByBankAndName(ctx, plan.BankID, name); err == nil && existing != nil && existing.ID != id {
			Error(c, http.StatusBadRequest, "plan name already exists for this bank", nil)
			return
		} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
			h.fail(c, "check plan name", err)
			return
		}
		plan.Name = name
	}
	if req.MinimumAmount != nil {
		plan.MinimumAmount = *req.MinimumAmount
	}
	if req.MaximumAmount != nil {
		plan.MaximumAmount = req.MaximumAmount
	}
	if req.TenureMonths > 0 {
		plan.TenureMonths = req.TenureMonths
	}
	if req.BaseRate != nil {
		plan.BaseRate = *req.BaseRate
	}
	if req.Description != nil {
		plan.Description = req.Description
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	violations := rateengine.Validate(plan.Terms(), plan.EngineRules())
	if rateengine.HasErrors(violations) {
		Error(c, http.StatusBadRequest, "plan rules are invalid", violationsMeta(violations))
		return
	}

	if err := h.Repo.UpdatePlan(ctx, plan); err != nil {
		h.fail(c, "update plan", err)
		return
	}
	h.Plans.Invalidate(ctx, id)
	Ok(c, plan, nil)
}

// @Summary Delete FD plan
// @Tags fd-plans
// @Param id path int true "plan id"
// @Success 200 {object} apiResponse
// @Router /api/fd-plans/{id} [delete]
func (h *PlanHandler) deletePlan(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	ctx := c.Request.Context()
	err := h.Repo.DeletePlan(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "plan not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "delete plan", err)
		return
	}
	h.Plans.Invalidate(ctx, id)
	Ok(c, gin.H{"deleted": id}, nil)
}

// @Summary Toggle plan active flag
// @Tags fd-plans
// @Param id path int true "plan id"
// @Success 200 {object} apiResponse
// @Router /api/fd-plans/{id}/toggle-active [patch]
func (h *PlanHandler) togglePlanActive(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	ctx := c.Request.Context()
	plan, err := h.Repo.GetPlanByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "plan not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get plan", err)
		return
	}
	if err := h.Repo.SetPlanActive(ctx, id, !plan.IsActive); err != nil {
		h.fail(c, "toggle plan", err)
		return
	}
	plan.IsActive = !plan.IsActive
	h.Plans.Invalidate(ctx, id)
	Ok(c, plan, nil)
}

// @Summary Add a rate rule to a plan
// @Tags rate-rules
// @Accept json
// @Param id path int true "plan id"
// @Param body body ruleRequest true "rule"
// @Success 201 {object} apiResponse
// @Router /api/fd-plans/{id}/rules [post]
func (h *PlanHandler) createRule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload: "+err.Error(), nil)
		return
	}

	ctx := c.Request.Context()
	plan, err := h.Repo.GetPlanWithRules(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "plan not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get plan", err)
		return
	}

	rule := req.toModel(id)
	// Validate the combined rule set before touching storage.
	plan.Rules = append(plan.Rules, rule)
	violations := rateengine.Validate(plan.Terms(), plan.EngineRules())
	if rateengine.HasErrors(violations) {
		Error(c, http.StatusBadRequest, "rule set would be invalid", violationsMeta(violations))
		return
	}

	if err := h.Repo.CreateRateRule(ctx, &rule); err != nil {
		h.fail(c, "create rule", err)
		return
	}
	h.Plans.Invalidate(ctx, id)
	if len(violations) > 0 {
		c.JSON(http.StatusCreated, apiResponse{Code: 0, Message: "ok", Data: rule, Meta: violationsMeta(violations)})
		return
	}
	Created(c, rule)
}

// @Summary List a plan's rate rules
// @Tags rate-rules
// @Param id path int true "plan id"
// @Success 200 {object} apiResponse
// @Router /api/fd-plans/{id}/rules [get]
func (h *PlanHandler) listRules(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.Repo.GetPlanByID(ctx, id); errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "plan not found", nil)
		return
	} else if err != nil {
		h.fail(c, "get plan", err)
		return
	}
	rules, err := h.Repo.ListRateRulesByPlanID(ctx, id)
	if err != nil {
		h.fail(c, "list rules", err)
		return
	}
	Ok(c, rules, nil)
}

// @Summary Validate a plan's stored rule set
// @Tags fd-plans
// @Param id path int true "plan id"
// @Success 200 {object} apiResponse
// @Router /api/fd-plans/{id}/validate [get]
func (h *PlanHandler) validatePlan(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	plan, err := h.Plans.LoadPlan(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "plan not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get plan", err)
		return
	}
	violations := rateengine.Validate(plan.Terms(), plan.EngineRules())
	Ok(c, gin.H{
		"plan_id":    plan.ID,
		"valid":      !rateengine.HasErrors(violations),
		"violations": violations,
	}, nil)
}

// @Summary Calculate interest for a withdrawal scenario
// @Tags fd-plans
// @Param id path int true "plan id"
// @Param principal_amount query number true "deposited principal"
// @Param withdrawal_months query int true "elapsed months at withdrawal"
// @Success 200 {object} apiResponse
// @Router /api/fd-plans/{id}/calculate-interest [get]
func (h *PlanHandler) calculateInterest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid plan id", nil)
		return
	}
	principal := decimalQueryPtr(c, "principal_amount")
	months := intQueryPtr(c, "withdrawal_months")
	if principal == nil || months == nil {
		Error(c, http.StatusBadRequest, "principal_amount and withdrawal_months are required", nil)
		return
	}

	plan, err := h.Plans.LoadPlan(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "plan not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get plan", err)
		return
	}

	terms := plan.Terms()
	decision := rateengine.Resolve(terms, plan.EngineRules(), *months)
	result, err := rateengine.ComputeMaturity(terms, decision, *principal, *months)
	if errors.Is(err, rateengine.ErrInvalidScenario) {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if err != nil {
		h.fail(c, "calculate interest", err)
		return
	}

	Ok(c, gin.H{
		"plan_id":           plan.ID,
		"plan_name":         plan.Name,
		"principal_amount":  principal,
		"withdrawal_months": *months,
		"decision":          decision,
		"calculation":       result,
	}, nil)
}

func (h *PlanHandler) fail(c *gin.Context, op string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(op+" failed", zap.Error(err))
	}
	Error(c, http.StatusInternalServerError, err.Error(), nil)
}
