package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/homeservices-backend/pkg/config"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/angelmondragon/homeservices-backend/pkg/kafka"
	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/metrics"
)

const (
	defaultBatchSize      = 50
	defaultPollInterval   = 500 * time.Millisecond
	defaultMaxAttempts    = 10
	defaultPublishTimeout = 15 * time.Second
	maxBackoff            = 10 * time.Second
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type decoder interface {
	Decode(row models.OutboxEvent) (*Record, error)
}

// Store is the slice of the outbox repository the relay writes through.
type Store interface {
	FetchUnpublishedForPublish(tx *gorm.DB, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublishedTx(tx *gorm.DB, id uuid.UUID) error
	MarkFailedTx(tx *gorm.DB, id uuid.UUID, err error) error
	MarkTerminalTx(tx *gorm.DB, id uuid.UUID, err error, terminalAttempts int) error
}

type deadLetters interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type Options struct {
	BatchSize      int
	MaxAttempts    int
	PollInterval   time.Duration
	PublishTimeout time.Duration
}

// OptionsFrom maps the env config, falling back to defaults for unset values.
func OptionsFrom(cfg config.OutboxConfig) Options {
	return Options{
		BatchSize:    cfg.BatchSize,
		MaxAttempts:  cfg.MaxAttempts,
		PollInterval: time.Duration(cfg.PollIntervalMS) * time.Millisecond,
	}
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = defaultMaxAttempts
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.PublishTimeout <= 0 {
		o.PublishTimeout = defaultPublishTimeout
	}
	return o
}

type Params struct {
	DB          txRunner
	Store       Store
	DeadLetters deadLetters
	Catalog     decoder
	Publisher   publisher
	Metrics     *metrics.OutboxMetrics
	Logger      *logger.Logger
	Options     Options
}

type Relay struct {
	db      txRunner
	store   Store
	dlq     deadLetters
	catalog decoder
	pub     publisher
	metrics *metrics.OutboxMetrics
	logg    *logger.Logger
	opts    Options
	now     func() time.Time
}

func New(p Params) (*Relay, error) {
	switch {
	case p.DB == nil:
		return nil, errors.New("transaction runner required")
	case p.Store == nil:
		return nil, errors.New("outbox store required")
	case p.DeadLetters == nil:
		return nil, errors.New("dead letter store required")
	case p.Catalog == nil:
		return nil, errors.New("event catalog required")
	case p.Publisher == nil:
		return nil, errors.New("publisher required")
	case p.Logger == nil:
		return nil, errors.New("logger required")
	}
	return &Relay{
		db:      p.DB,
		store:   p.Store,
		dlq:     p.DeadLetters,
		catalog: p.Catalog,
		pub:     p.Publisher,
		metrics: p.Metrics,
		logg:    p.Logger,
		opts:    p.Options.withDefaults(),
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// Run drains batches until ctx is canceled. A non-empty batch is followed
// immediately by the next one; an empty poll waits PollInterval.
func (r *Relay) Run(ctx context.Context) error {
	wait := newBackoff(r.opts.PollInterval, maxBackoff)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		handled, err := r.Drain(ctx)
		var delay time.Duration
		switch {
		case err != nil:
			r.logg.Error(ctx, "outbox batch failed", err)
			delay = wait.fail()
		case handled > 0:
			wait.reset()
			continue
		default:
			delay = wait.reset()
		}

		timer := time.NewTimer(jitter(delay))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Drain handles one batch in a single transaction and reports how many rows
// it touched. Publish failures are recorded on the row, not returned.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	start := time.Now()
	var handled int
	err := r.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := r.store.FetchUnpublishedForPublish(tx, r.opts.BatchSize, r.opts.MaxAttempts)
		if err != nil {
			return fmt.Errorf("fetch outbox batch: %w", err)
		}
		for _, row := range rows {
			if err := r.handle(ctx, tx, row); err != nil {
				return err
			}
			handled++
		}
		return nil
	})
	if handled > 0 || err != nil {
		r.metrics.ObserveBatch(time.Since(start), err)
	}
	return handled, err
}

func (r *Relay) handle(ctx context.Context, tx *gorm.DB, row models.OutboxEvent) error {
	logCtx := r.logg.WithFields(ctx, map[string]any{
		"outbox_id":     row.ID.String(),
		"event_type":    row.EventType,
		"aggregate_id":  row.AggregateID.String(),
		"attempt_count": row.AttemptCount,
	})

	rec, err := r.catalog.Decode(row)
	if err == nil {
		logCtx = r.logg.WithFields(logCtx, map[string]any{"topic": rec.Topic, "event_id": rec.Envelope.EventID})
		err = r.publish(ctx, row, rec)
	}

	switch {
	case err == nil:
		if err := r.store.MarkPublishedTx(tx, row.ID); err != nil {
			return fmt.Errorf("mark %s published: %w", row.ID, err)
		}
		r.metrics.IncPublished(string(row.EventType))
		r.logg.Info(logCtx, "outbox event published")
		return nil

	case errors.Is(err, ErrPermanent):
		return r.deadLetter(logCtx, tx, row, enums.OutboxDLQReasonNonRetryable, err)

	case row.AttemptCount+1 >= r.opts.MaxAttempts:
		return r.deadLetter(logCtx, tx, row, enums.OutboxDLQReasonMaxAttempts,
			fmt.Errorf("gave up after %d attempts: %w", row.AttemptCount+1, err))

	default:
		r.logg.Warn(r.logg.WithField(logCtx, "error", err.Error()), "outbox publish failed, will retry")
		r.metrics.IncFailed(string(row.EventType))
		if err := r.store.MarkFailedTx(tx, row.ID, err); err != nil {
			return fmt.Errorf("mark %s failed: %w", row.ID, err)
		}
		return nil
	}
}

func (r *Relay) publish(ctx context.Context, row models.OutboxEvent, rec *Record) error {
	ctx, cancel := context.WithTimeout(ctx, r.opts.PublishTimeout)
	defer cancel()
	return r.pub.Publish(ctx, kafka.Message{
		Topic: rec.Topic,
		Key:   row.AggregateID.String(),
		Value: row.Payload,
		Headers: map[string]string{
			"event_id":       rec.Envelope.EventID,
			"event_type":     string(row.EventType),
			"aggregate_type": string(row.AggregateType),
			"aggregate_id":   row.AggregateID.String(),
			"created_at":     row.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	})
}

func (r *Relay) deadLetter(ctx context.Context, tx *gorm.DB, row models.OutboxEvent, reason enums.OutboxDLQErrorReason, cause error) error {
	if !reason.IsValid() {
		return fmt.Errorf("dead-letter %s: unknown reason %q", row.ID, reason)
	}
	msg := cause.Error()
	entry := models.OutboxDLQ{
		EventID:       row.ID,
		EventType:     row.EventType,
		AggregateType: row.AggregateType,
		AggregateID:   row.AggregateID,
		Payload:       row.Payload,
		ErrorReason:   reason,
		ErrorMessage:  &msg,
		AttemptCount:  row.AttemptCount,
		FailedAt:      r.now(),
	}
	if err := r.dlq.InsertTx(tx, entry); err != nil {
		return fmt.Errorf("dead-letter %s: %w", row.ID, err)
	}
	if err := r.store.MarkTerminalTx(tx, row.ID, cause, r.opts.MaxAttempts); err != nil {
		return fmt.Errorf("park %s: %w", row.ID, err)
	}
	r.metrics.IncDeadLettered(string(row.EventType), reason.String())
	r.logg.Warn(r.logg.WithFields(ctx, map[string]any{"error": msg, "error_reason": reason}), "outbox event dead-lettered")
	return nil
}
