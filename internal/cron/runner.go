package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner wraps robfig/cron with a shared base context and error logging. The
// scheduler is pinned to UTC so specs fire at the same wall-clock instant as
// the snapshot date bucketing, regardless of the host timezone. Jobs receive
// the server's lifetime context so an in-flight snapshot run observes
// shutdown.
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
		cron:    cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add schedules a job under a six-field spec. A job error is logged, never
// fatal: the next tick runs regardless.
func (r *Runner) Add(name, spec string, job func(context.Context) error) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		ctx := context.Background()
		if r != nil && r.baseCtx != nil {
			ctx = r.baseCtx
		}
		if err := job(ctx); err != nil && r != nil && r.logger != nil {
			r.logger.Error("cron job failed",
				zap.String("job", name),
				zap.Error(err),
			)
		}
	})
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
