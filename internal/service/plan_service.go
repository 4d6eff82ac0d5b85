package service

import (
	"context"

	"go.uber.org/zap"

	"fdcatalog/internal/cache"
	"fdcatalog/internal/models"
	"fdcatalog/internal/repository"
)

// PlanService fronts plan reads with the snapshot cache. Writes to a plan or
// its rules must go through Invalidate so the next read refills.
type PlanService struct {
	repo  repository.Repository
	cache *cache.PlanCache
	log   *zap.Logger
}

func NewPlanService(repo repository.Repository, planCache *cache.PlanCache, log *zap.Logger) *PlanService {
	return &PlanService{repo: repo, cache: planCache, log: log}
}

// LoadPlan returns the plan with its rules, from cache when possible.
func (s *PlanService) LoadPlan(ctx context.Context, id uint64) (*models.Plan, error) {
	if cached, err := s.cache.GetPlan(ctx, id); err != nil {
		if s.log != nil {
			s.log.Warn("plan cache read failed", zap.Uint64("plan_id", id), zap.Error(err))
		}
	} else if cached != nil {
		return cached, nil
	}

	plan, err := s.repo.GetPlanWithRules(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetPlan(ctx, plan)
	return plan, nil
}

func (s *PlanService) Invalidate(ctx context.Context, id uint64) {
	s.cache.Invalidate(ctx, id)
}
