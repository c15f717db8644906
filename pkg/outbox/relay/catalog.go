// Package relay moves committed outbox rows to Kafka, keyed by aggregate id
// in commit order. Rows that keep failing are copied to the dead letter table.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/angelmondragon/homeservices-backend/pkg/config"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/angelmondragon/homeservices-backend/pkg/outbox"
	"github.com/angelmondragon/homeservices-backend/pkg/outbox/payloads"
)

// ErrPermanent marks failures that another attempt cannot fix.
var ErrPermanent = errors.New("permanent outbox failure")

// Permanent wraps err so the relay dead-letters the row right away.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

type route struct {
	aggregate enums.OutboxAggregateType
	topic     string
	newData   func() any
}

// Catalog knows, for each event type, which topic it goes to and which
// payload shape it must decode into.
type Catalog struct {
	routes map[enums.OutboxEventType]route
}

// Record is a decoded outbox row ready for the broker.
type Record struct {
	Topic    string
	Envelope outbox.PayloadEnvelope
	Data     any
}

func NewCatalog(cfg config.KafkaConfig) (*Catalog, error) {
	if cfg.BookingsTopic == "" {
		return nil, errors.New("bookings topic is required")
	}
	booking := func(newData func() any) route {
		return route{aggregate: enums.AggregateBooking, topic: cfg.BookingsTopic, newData: newData}
	}
	return &Catalog{routes: map[enums.OutboxEventType]route{
		enums.EventBookingCreated:       booking(func() any { return &payloads.BookingCreatedEvent{} }),
		enums.EventBookingAssigned:      booking(func() any { return &payloads.BookingAssignedEvent{} }),
		enums.EventBookingStatusChanged: booking(func() any { return &payloads.BookingStatusChangedEvent{} }),
	}}, nil
}

// Decode checks the row against its route and parses the envelope and typed
// payload. Every error it returns is permanent.
func (c *Catalog) Decode(row models.OutboxEvent) (*Record, error) {
	rt, ok := c.routes[row.EventType]
	if !ok {
		return nil, Permanent(fmt.Errorf("unknown event type %q", row.EventType))
	}
	if rt.aggregate != row.AggregateType {
		return nil, Permanent(fmt.Errorf("%s belongs to %s aggregates, row says %s", row.EventType, rt.aggregate, row.AggregateType))
	}
	if row.AggregateID == uuid.Nil {
		return nil, Permanent(errors.New("aggregate id is empty"))
	}

	env, err := outbox.OpenEnvelope(row.Payload)
	if err != nil {
		return nil, Permanent(fmt.Errorf("%s: %w", row.EventType, err))
	}
	data := rt.newData()
	if err := json.Unmarshal(env.Data, data); err != nil {
		return nil, Permanent(fmt.Errorf("%s data: %w", row.EventType, err))
	}
	return &Record{Topic: rt.topic, Envelope: env, Data: data}, nil
}
