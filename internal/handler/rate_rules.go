package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fdcatalog/internal/rateengine"
	"fdcatalog/internal/repository"
	"fdcatalog/internal/service"
)

// RateRuleHandler serves the rule-level routes. They live under
// /api/rate-rules because gin cannot mix /api/fd-plans/:id with a second
// wildcard shape at the same position.
type RateRuleHandler struct {
	Repo   repository.Repository
	Plans  *service.PlanService
	Logger *zap.Logger
}

func (h *RateRuleHandler) Register(r *gin.Engine) {
	group := r.Group("/api/rate-rules")
	group.GET("/:id", h.getRule)
	group.PUT("/:id", h.updateRule)
	group.DELETE("/:id", h.deleteRule)
}

// @Summary Get rate rule
// @Tags rate-rules
// @Param id path int true "rule id"
// @Success 200 {object} apiResponse
// @Router /api/rate-rules/{id} [get]
func (h *RateRuleHandler) getRule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid rule id", nil)
		return
	}
	rule, err := h.Repo.GetRateRuleByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "rule not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get rule", err)
		return
	}
	Ok(c, rule, nil)
}

// @Summary Update rate rule
// @Tags rate-rules
// @Accept json
// @Param id path int true "rule id"
// @Param body body ruleRequest true "rule fields"
// @Success 200 {object} apiResponse
// @Router /api/rate-rules/{id} [put]
func (h *RateRuleHandler) updateRule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid rule id", nil)
		return
	}
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid payload: "+err.Error(), nil)
		return
	}

	ctx := c.Request.Context()
	rule, err := h.Repo.GetRateRuleByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "rule not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get rule", err)
		return
	}

	if kind := strings.ToLower(strings.TrimSpace(req.Kind)); kind != "" {
		rule.Kind = kind
	}
	if req.MinTenureMonths != nil {
		rule.MinTenureMonths = req.MinTenureMonths
	}
	if req.MaxTenureMonths != nil {
		rule.MaxTenureMonths = req.MaxTenureMonths
	}
	if req.Rate != nil {
		rule.Rate = *req.Rate
	}
	if req.PenaltyRate != nil {
		rule.PenaltyRate = *req.PenaltyRate
	}
	if req.PenaltyFixed != nil {
		rule.PenaltyFixed = *req.PenaltyFixed
	}
	if req.Description != nil {
		rule.Description = req.Description
	}

	// Validate the plan's full rule set with the edit applied.
	plan, err := h.Repo.GetPlanWithRules(ctx, rule.PlanID)
	if err != nil {
		h.fail(c, "get plan", err)
		return
	}
	for i := range plan.Rules {
		if plan.Rules[i].ID == rule.ID {
			plan.Rules[i] = *rule
		}
	}
	violations := rateengine.Validate(plan.Terms(), plan.EngineRules())
	if rateengine.HasErrors(violations) {
		Error(c, http.StatusBadRequest, "rule set would be invalid", violationsMeta(violations))
		return
	}

	if err := h.Repo.UpdateRateRule(ctx, rule); err != nil {
		h.fail(c, "update rule", err)
		return
	}
	h.Plans.Invalidate(ctx, rule.PlanID)
	Ok(c, rule, nil)
}

// @Summary Delete rate rule
// @Tags rate-rules
// @Param id path int true "rule id"
// @Success 200 {object} apiResponse
// @Router /api/rate-rules/{id} [delete]
func (h *RateRuleHandler) deleteRule(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		Error(c, http.StatusBadRequest, "invalid rule id", nil)
		return
	}
	ctx := c.Request.Context()
	rule, err := h.Repo.GetRateRuleByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		Error(c, http.StatusNotFound, "rule not found", nil)
		return
	}
	if err != nil {
		h.fail(c, "get rule", err)
		return
	}
	if err := h.Repo.DeleteRateRule(ctx, id); err != nil {
		h.fail(c, "delete rule", err)
		return
	}
	h.Plans.Invalidate(ctx, rule.PlanID)
	Ok(c, gin.H{"deleted": id}, nil)
}

func (h *RateRuleHandler) fail(c *gin.Context, op string, err error) {
	if h.Logger != nil {
		h.Logger.Warn(op+" failed", zap.Error(err))
	}
	Error(c, http.StatusInternalServerError, err.Error(), nil)
}
