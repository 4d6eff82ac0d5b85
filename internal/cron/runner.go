package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"fdcatalog/internal/config"
	"fdcatalog/internal/repository"
)

type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		if r == nil || r.baseCtx == nil {
			job(context.Background())
			return
		}
		job(r.baseCtx)
	})
}

// RegisterUploadSweep schedules the job that fails sheet uploads stuck in
// pending or processing longer than the configured window.
func (r *Runner) RegisterUploadSweep(cfg config.CronConfig, repo repository.Repository) error {
	staleAfter := cfg.UploadStaleAfter
	if staleAfter <= 0 {
		staleAfter = time.Hour
	}
	_, err := r.Add(cfg.UploadSweep, func(ctx context.Context) {
		cutoff := time.Now().UTC().Add(-staleAfter)
		n, err := repo.FailStaleUploads(ctx, cutoff)
		if err != nil {
			if r.logger != nil {
				r.logger.Warn("stale upload sweep failed", zap.Error(err))
			}
			return
		}
		if n > 0 && r.logger != nil {
			r.logger.Info("stale uploads failed", zap.Int64("count", n))
		}
	})
	return err
}

func (r *Runner) Start() {
	if r.logger != nil {
		r.logger.Info("cron started")
	}
	r.cron.Start()
}

func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	if r.logger != nil {
		r.logger.Info("cron stopped")
	}
}
