package orders

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/homeservices-backend/pkg/db"
	"github.com/angelmondragon/homeservices-backend/pkg/db/dbtest"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
	"github.com/angelmondragon/homeservices-backend/pkg/metrics"
	"github.com/angelmondragon/homeservices-backend/pkg/outbox"
	"github.com/angelmondragon/homeservices-backend/pkg/sequence"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	svc  Service
	conn *gorm.DB
	reg  *prometheus.Registry
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	conn := dbtest.Open(t)
	allocator, err := sequence.NewDBAllocator(conn)
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	svc, err := NewService(
		NewRepository(conn),
		db.Wrap(conn),
		allocator,
		outbox.NewService(outbox.NewRepository(conn), nil),
		metrics.NewBookingMetrics(reg),
		nil,
	)
	require.NoError(t, err)
	return fixture{svc: svc, conn: conn, reg: reg}
}

func validInput(userID string) CreateOrderInput {
	return CreateOrderInput{
		UserID: userID,
		Cart: []types.OrderLine{
			{ProductID: "p1", Title: "Sofa Cleaning", Price: decimal.NewFromInt(499), Quantity: 2},
		},
		Address: types.Address{
			FullName: "Asha Rao",
			Street:   "12 MG Road",
			City:     "Pune",
			ZipCode:  "411001",
			Phone:    "9999999999",
		},
		Amounts: types.Amounts{
			Subtotal: decimal.NewFromInt(998),
			Tax:      decimal.NewFromInt(2),
			Total:    decimal.NewFromInt(1000),
		},
	}
}

func outboxEvents(t *testing.T, conn *gorm.DB, id uuid.UUID) []models.OutboxEvent {
	t.Helper()
	events, err := outbox.NewRepository(conn).ListByAggregate(conn, id)
	require.NoError(t, err)
	return events
}

func TestCreateAllocatesSequentialOrderIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, validInput("u1"))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, validInput("u1"))
	require.NoError(t, err)

	assert.Equal(t, sequence.FormatOrderID(1), first.OrderID)
	assert.Equal(t, sequence.FormatOrderID(2), second.OrderID)
	assert.Equal(t, enums.BookingStatusPending, first.Status)
	assert.Equal(t, defaultPaymentType, first.PaymentType)
	assert.True(t, decimal.NewFromInt(1000).Equal(first.TotalAmount))
	assert.Nil(t, first.AssignedStaff)

	events := outboxEvents(t, f.conn, first.ID)
	require.Len(t, events, 1)
	assert.Equal(t, enums.EventBookingCreated, events[0].EventType)
	assert.Equal(t, 2.0, counterValue(t, f.reg, "bookings_created_total"))
}

func TestCreateDuplicateOrderIDConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := validInput("u1")
	input.OrderID = "ORD-CUSTOM-1"
	_, err := f.svc.Create(ctx, input)
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, input)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	var count int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestCreateClientOrderIDAdvancesSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	input := validInput("u1")
	input.OrderID = "ORD-000001"
	_, err := f.svc.Create(ctx, input)
	require.NoError(t, err)

	next, err := f.svc.Create(ctx, validInput("u1"))
	require.NoError(t, err)
	assert.Equal(t, "ORD-000002", next.OrderID)
}

func TestSeedOrderIDSequenceContinuesAfterHighestStored(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, orderID := range []string{"ORD-000007", "ORD-000012", "ORD-LEGACY"} {
		stored := &models.Booking{
			OrderID:     orderID,
			UserID:      "u1",
			PaymentType: defaultPaymentType,
			Status:      enums.BookingStatusPending,
			OrderDate:   time.Now().UTC(),
		}
		require.NoError(t, f.conn.Create(stored).Error)
	}

	require.NoError(t, f.svc.SeedOrderIDSequence(ctx))
	next, err := f.svc.Create(ctx, validInput("u1"))
	require.NoError(t, err)
	assert.Equal(t, "ORD-000013", next.OrderID)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	noCart := validInput("u1")
	noCart.Cart = nil
	badQty := validInput("u1")
	badQty.Cart[0].Quantity = 0
	noCity := validInput("u1")
	noCity.Address.City = " "
	negative := validInput("u1")
	negative.Amounts.Total = decimal.NewFromInt(-1)

	for name, input := range map[string]CreateOrderInput{
		"missing user":     validInput(""),
		"empty cart":       noCart,
		"zero quantity":    badQty,
		"missing city":     noCity,
		"negative amounts": negative,
	} {
		_, err := f.svc.Create(ctx, input)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestListOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, user := range []string{"u1", "u2", "u1"} {
		input := validInput(user)
		at := base.Add(time.Duration(i) * time.Hour)
		input.OrderDate = &at
		_, err := f.svc.Create(ctx, input)
		require.NoError(t, err)
	}

	all, err := f.svc.List(ctx, ListFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].OrderDate.After(all[1].OrderDate))
	assert.True(t, all[1].OrderDate.After(all[2].OrderDate))

	mine, err := f.svc.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "u1", mine[0].UserID)

	_, err = f.svc.ListByUser(ctx, "ghost")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "No bookings found for this user", pkgerrors.As(err).Message())
}

func TestGetMissingBooking(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, "Booking not found", pkgerrors.As(err).Message())
}

func TestTransitionsFollowTable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validInput("u1"))
	require.NoError(t, err)

	accepted, err := f.svc.Accept(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Booking accepted", accepted.Message)
	assert.Equal(t, enums.BookingStatusConfirmed, accepted.Booking.Status)

	_, err = f.svc.Reject(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	done, err := f.svc.Complete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCompleted, done.Booking.Status)

	_, err = f.svc.MarkNotCompleted(ctx, created.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition))

	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusCompleted, stored.Status)
	assert.Equal(t, created.OrderID, stored.OrderID)

	events := outboxEvents(t, f.conn, created.ID)
	require.Len(t, events, 3)
	changed := 0
	for _, event := range events {
		if event.EventType == enums.EventBookingStatusChanged {
			changed++
		}
	}
	assert.Equal(t, 2, changed)
	assert.Equal(t, 2.0, counterValue(t, f.reg, "booking_transitions_total"))
	assert.Equal(t, 2.0, counterValue(t, f.reg, "booking_transitions_rejected_total"))
}

func TestLegacyUnassignedBookingCanBeRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	legacy := &models.Booking{
		OrderID:     "ORD-LEGACY",
		UserID:      "u9",
		PaymentType: defaultPaymentType,
		Status:      enums.BookingStatusUnassigned,
		OrderDate:   time.Now().UTC(),
	}
	require.NoError(t, f.conn.Create(legacy).Error)

	got, err := f.svc.Reject(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.BookingStatusRejected, got.Booking.Status)
	assert.Equal(t, "Booking rejected", got.Message)
}

func TestConcurrentTransitionsApplyOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, validInput("u1"))
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		refused   int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = f.svc.Complete(ctx, created.ID)
			} else {
				_, err = f.svc.Reject(ctx, created.ID)
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, refused)

	stored, err := f.svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.Status.IsTerminal())
	assert.Len(t, outboxEvents(t, f.conn, created.ID), 2)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}
