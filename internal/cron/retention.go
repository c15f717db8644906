package cron

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/metrics"
)

const (
	OutboxRetentionJob = "outbox-retention"
	DLQRetentionJob    = "outbox-dlq-retention"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// PurgeFunc deletes rows older than cutoff and reports how many went.
type PurgeFunc func(tx *gorm.DB, cutoff time.Time) (int64, error)

type RetentionParams struct {
	Name    string
	Keep    time.Duration
	DB      txRunner
	Purge   PurgeFunc
	Logger  *logger.Logger
	Metrics *metrics.JobMetrics
}

type retentionJob struct {
	name    string
	keep    time.Duration
	db      txRunner
	purge   PurgeFunc
	logg    *logger.Logger
	metrics *metrics.JobMetrics
	now     func() time.Time
}

// NewRetentionJob builds a job that deletes rows older than Keep on each run.
func NewRetentionJob(params RetentionParams) (Job, error) {
	switch {
	case params.Name == "":
		return nil, errors.New("job name required")
	case params.Keep <= 0:
		return nil, errors.New("retention must be positive")
	case params.DB == nil:
		return nil, errors.New("transaction runner required")
	case params.Purge == nil:
		return nil, errors.New("purge func required")
	case params.Logger == nil:
		return nil, errors.New("logger required")
	}
	return &retentionJob{
		name:    params.Name,
		keep:    params.Keep,
		db:      params.DB,
		purge:   params.Purge,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

func (j *retentionJob) Name() string { return j.name }

func (j *retentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.keep)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		n, err := j.purge(tx.WithContext(ctx), cutoff)
		deleted = n
		return err
	})
	if err != nil {
		return err
	}
	j.metrics.AddDeleted(j.name, deleted)
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	}), "retention purge complete")
	return nil
}
