package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/homeservices-backend/pkg/db"
	"github.com/angelmondragon/homeservices-backend/pkg/db/dbtest"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/angelmondragon/homeservices-backend/pkg/kafka"
	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/outbox"
	"github.com/angelmondragon/homeservices-backend/pkg/outbox/payloads"
)

type recordingPublisher struct {
	sent    []kafka.Message
	failFor map[string]error
}

func (p *recordingPublisher) Publish(_ context.Context, msg kafka.Message) error {
	if err, ok := p.failFor[msg.Key]; ok {
		return err
	}
	p.sent = append(p.sent, msg)
	return nil
}

type fixture struct {
	conn  *gorm.DB
	repo  *outbox.Repository
	pub   *recordingPublisher
	relay *Relay
}

func newFixture(t *testing.T, maxAttempts int) *fixture {
	t.Helper()
	conn := dbtest.Open(t)
	repo := outbox.NewRepository(conn)
	pub := &recordingPublisher{failFor: map[string]error{}}
	r, err := New(Params{
		DB:          db.Wrap(conn),
		Store:       repo,
		DeadLetters: outbox.NewDLQRepository(conn),
		Catalog:     testCatalog(t),
		Publisher:   pub,
		Logger:      logger.New(logger.Options{ServiceName: "test"}),
		Options:     Options{MaxAttempts: maxAttempts},
	})
	require.NoError(t, err)
	return &fixture{conn: conn, repo: repo, pub: pub, relay: r}
}

func (f *fixture) emit(t *testing.T, eventType enums.OutboxEventType, data any) uuid.UUID {
	t.Helper()
	id := uuid.New()
	svc := outbox.NewService(f.repo, nil)
	require.NoError(t, f.conn.Transaction(func(tx *gorm.DB) error {
		return svc.Emit(context.Background(), tx, outbox.DomainEvent{
			EventType:     eventType,
			AggregateType: enums.AggregateBooking,
			AggregateID:   id,
			Data:          data,
		})
	}))
	return id
}

func (f *fixture) row(t *testing.T, aggregateID uuid.UUID) models.OutboxEvent {
	t.Helper()
	rows, err := f.repo.ListByAggregate(nil, aggregateID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	return rows[0]
}

func TestDrainPublishesKeyedByBooking(t *testing.T) {
	f := newFixture(t, 3)
	id := f.emit(t, enums.EventBookingCreated, payloads.BookingCreatedEvent{OrderID: "ORD-000001"})

	handled, err := f.relay.Drain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, handled)

	require.Len(t, f.pub.sent, 1)
	msg := f.pub.sent[0]
	assert.Equal(t, "bookings", msg.Topic)
	assert.Equal(t, id.String(), msg.Key)
	assert.Equal(t, string(enums.EventBookingCreated), msg.Headers["event_type"])
	assert.NotEmpty(t, msg.Headers["event_id"])
	assert.NotNil(t, f.row(t, id).PublishedAt)

	handled, err = f.relay.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, handled, "published rows are not fetched again")
}

func TestDrainRetriesThenDeadLetters(t *testing.T) {
	f := newFixture(t, 2)
	failing := f.emit(t, enums.EventBookingAssigned, payloads.BookingAssignedEvent{OrderID: "ORD-000002"})
	healthy := f.emit(t, enums.EventBookingCreated, payloads.BookingCreatedEvent{OrderID: "ORD-000003"})
	f.pub.failFor[failing.String()] = errors.New("leader not available")

	_, err := f.relay.Drain(context.Background())
	require.NoError(t, err)
	row := f.row(t, failing)
	assert.Nil(t, row.PublishedAt)
	assert.Equal(t, 1, row.AttemptCount)
	require.NotNil(t, row.LastError)
	assert.Contains(t, *row.LastError, "leader not available")
	assert.NotNil(t, f.row(t, healthy).PublishedAt, "one failing row must not block the batch")

	_, err = f.relay.Drain(context.Background())
	require.NoError(t, err)

	var dlq models.OutboxDLQ
	require.NoError(t, f.conn.Where("event_id = ?", row.ID).First(&dlq).Error)
	assert.Equal(t, enums.OutboxDLQReasonMaxAttempts, dlq.ErrorReason)
	assert.Equal(t, 2, f.row(t, failing).AttemptCount)

	handled, err := f.relay.Drain(context.Background())
	require.NoError(t, err)
	assert.Zero(t, handled, "parked rows are not fetched again")
}

func TestDrainDeadLettersUndecodableRows(t *testing.T) {
	f := newFixture(t, 5)
	id := uuid.New()
	require.NoError(t, f.conn.Transaction(func(tx *gorm.DB) error {
		return f.repo.Insert(tx, models.OutboxEvent{
			EventType:     "booking.exploded",
			AggregateType: enums.AggregateBooking,
			AggregateID:   id,
			Payload:       []byte(`{"version":1,"data":{}}`),
		})
	}))

	_, err := f.relay.Drain(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.pub.sent)

	var dlq models.OutboxDLQ
	require.NoError(t, f.conn.Where("aggregate_id = ?", id).First(&dlq).Error)
	assert.Equal(t, enums.OutboxDLQReasonNonRetryable, dlq.ErrorReason)
	require.NotNil(t, dlq.ErrorMessage)
	assert.Contains(t, *dlq.ErrorMessage, "unknown event type")
}

func TestDeadLetterRejectsUnknownReason(t *testing.T) {
	f := newFixture(t, 3)
	row := models.OutboxEvent{ID: uuid.New(), EventType: enums.EventBookingCreated}

	err := f.conn.Transaction(func(tx *gorm.DB) error {
		return f.relay.deadLetter(context.Background(), tx, row, enums.OutboxDLQErrorReason("timeout"), errors.New("boom"))
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown reason")

	var count int64
	require.NoError(t, f.conn.Model(&models.OutboxDLQ{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRunStopsWhenCanceled(t *testing.T) {
	f := newFixture(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.relay.Run(ctx), context.Canceled)
}

func TestNewValidatesParams(t *testing.T) {
	_, err := New(Params{})
	assert.Error(t, err)
}
