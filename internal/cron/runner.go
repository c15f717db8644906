package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/metrics"
)

const defaultInterval = 6 * time.Hour

type RunnerParams struct {
	Logger   *logger.Logger
	Lease    Lease
	Metrics  *metrics.JobMetrics
	Interval time.Duration
	Jobs     []Job
}

// Runner executes its jobs once at start and then on every tick.
type Runner struct {
	logg     *logger.Logger
	lease    Lease
	metrics  *metrics.JobMetrics
	interval time.Duration
	jobs     []Job
}

func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	if params.Lease == nil {
		return nil, errors.New("lease required")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	jobs := make([]Job, 0, len(params.Jobs))
	for _, job := range params.Jobs {
		if job != nil {
			jobs = append(jobs, job)
		}
	}
	return &Runner{
		logg:     params.Logger,
		lease:    params.Lease,
		metrics:  params.Metrics,
		interval: interval,
		jobs:     jobs,
	}, nil
}

// Run blocks until ctx is canceled.
func (r *Runner) Run(ctx context.Context) error {
	r.cycle(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

func (r *Runner) cycle(ctx context.Context) {
	if err := r.RunOnce(ctx); err != nil {
		r.logg.Error(ctx, "maintenance cycle failed", err)
	}
}

// RunOnce runs every job under the lease. A failing job does not stop the
// ones after it; their errors are combined.
func (r *Runner) RunOnce(ctx context.Context) error {
	held, err := r.lease.Acquire(ctx)
	if err != nil {
		return err
	}
	if !held {
		r.logg.Info(ctx, "maintenance lease held elsewhere, skipping cycle")
		return nil
	}
	defer func() {
		if err := r.lease.Release(ctx); err != nil {
			r.logg.Error(ctx, "release maintenance lease", err)
		}
	}()

	var errs error
	for _, job := range r.jobs {
		jobCtx := r.logg.WithField(ctx, "job", job.Name())
		start := time.Now()
		err := job.Run(jobCtx)
		elapsed := time.Since(start)
		r.metrics.ObserveRun(job.Name(), elapsed, err)

		jobCtx = r.logg.WithField(jobCtx, "duration_ms", elapsed.Milliseconds())
		if err != nil {
			r.logg.Error(jobCtx, "job failed", err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", job.Name(), err))
			continue
		}
		r.logg.Info(jobCtx, "job completed")
	}
	return errs
}
