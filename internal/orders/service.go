package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/angelmondragon/homeservices-backend/pkg/db"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/metrics"
	"github.com/angelmondragon/homeservices-backend/pkg/outbox"
	"github.com/angelmondragon/homeservices-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/homeservices-backend/pkg/sequence"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes booking placement, reads and lifecycle transitions.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*BookingDTO, error)
	List(ctx context.Context, filters ListFilters) ([]BookingDTO, error)
	ListByUser(ctx context.Context, userID string) ([]BookingDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BookingDTO, error)
	Accept(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	Reject(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	Complete(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	MarkNotCompleted(ctx context.Context, id uuid.UUID) (*TransitionResult, error)
	SeedOrderIDSequence(ctx context.Context) error
}

var transitionMessages = map[enums.BookingAction]string{
	enums.BookingActionAccept:         "Booking accepted",
	enums.BookingActionReject:         "Booking rejected",
	enums.BookingActionComplete:       "Booking marked as completed",
	enums.BookingActionMarkIncomplete: "Booking marked as not completed",
}

type service struct {
	repo      Repository
	tx        txRunner
	allocator sequence.Allocator
	outbox    outboxPublisher
	metrics   *metrics.BookingMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the booking service. A nil metrics recorder is a no-op.
func NewService(repo Repository, tx txRunner, allocator sequence.Allocator, outbox outboxPublisher, bookingMetrics *metrics.BookingMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		allocator: allocator,
		outbox:    outbox,
		metrics:   bookingMetrics,
		logg:      logg,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*BookingDTO, error) {
	booking, err := s.buildBooking(input)
	if err != nil {
		return nil, err
	}
	clientOrderID := booking.OrderID != ""
	if !clientOrderID {
		n, err := s.allocator.Next(ctx, sequence.OrderID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate order id")
		}
		booking.OrderID = sequence.FormatOrderID(n)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, booking); err != nil {
			if db.IsUniqueViolation(err, "ux_bookings_order_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "orderId already exists").
					WithDetails(map[string]any{"orderId": booking.OrderID})
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert booking")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingCreated,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Actor:         &outbox.ActorRef{UserID: booking.UserID},
			Data: payloads.BookingCreatedEvent{
				BookingID:   booking.ID,
				OrderID:     booking.OrderID,
				UserID:      booking.UserID,
				Status:      booking.Status,
				LineCount:   len(booking.Cart),
				Total:       booking.TotalAmount,
				PaymentType: booking.PaymentType,
				OrderDate:   booking.OrderDate,
			},
		})
	})
	if err != nil {
		return nil, asTyped(err, "create booking")
	}

	s.metrics.IncCreated()
	if s.logg != nil {
		logCtx := s.logg.WithBookingID(s.logg.WithUserID(ctx, booking.UserID), booking.ID.String())
		s.logg.Info(s.logg.WithField(logCtx, "order_id", booking.OrderID), "booking created")
	}
	if clientOrderID {
		s.advanceOrderIDSequence(ctx, booking.OrderID)
	}
	return NewBookingDTO(booking), nil
}

// advanceOrderIDSequence keeps the counter ahead of a client supplied
// ORD-###### id. The booking is already stored, so a failure only logs.
func (s *service) advanceOrderIDSequence(ctx context.Context, orderID string) {
	n, ok := sequence.ParseOrderID(orderID)
	if !ok {
		return
	}
	if err := s.allocator.Seed(ctx, sequence.OrderID, n); err != nil && s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"order_id": orderID, "error": err.Error()})
		s.logg.Warn(logCtx, "order id sequence not advanced")
	}
}

// SeedOrderIDSequence raises the order id counter to the highest ORD-######
// already stored.
func (s *service) SeedOrderIDSequence(ctx context.Context) error {
	ids, err := s.repo.ListGeneratedOrderIDs(ctx, sequence.OrderIDPrefix)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list order ids")
	}
	floor := sequence.MaxOrderID(ids)
	if floor == 0 {
		return nil
	}
	if err := s.allocator.Seed(ctx, sequence.OrderID, floor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed order id sequence")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "order_id_floor", floor), "order id sequence seeded")
	}
	return nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]BookingDTO, error) {
	filters.UserID = strings.TrimSpace(filters.UserID)
	bookings, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list bookings")
	}
	return NewBookingDTOs(bookings), nil
}

// ListByUser differs from List by treating an empty result as not found.
func (s *service) ListByUser(ctx context.Context, userID string) ([]BookingDTO, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	bookings, err := s.List(ctx, ListFilters{UserID: userID})
	if err != nil {
		return nil, err
	}
	if len(bookings) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "No bookings found for this user")
	}
	return bookings, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, MapLookupErr(err)
	}
	return NewBookingDTO(booking), nil
}

func (s *service) Accept(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.transition(ctx, id, enums.BookingActionAccept)
}

func (s *service) Reject(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.transition(ctx, id, enums.BookingActionReject)
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.transition(ctx, id, enums.BookingActionComplete)
}

func (s *service) MarkNotCompleted(ctx context.Context, id uuid.UUID) (*TransitionResult, error) {
	return s.transition(ctx, id, enums.BookingActionMarkIncomplete)
}

func (s *service) transition(ctx context.Context, id uuid.UUID, action enums.BookingAction) (*TransitionResult, error) {
	var (
		updated *models.Booking
		from    enums.BookingStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return MapLookupErr(err)
		}
		from = booking.Status.Normalize()
		next, err := NextStatus(booking.Status, action)
		if err != nil {
			s.metrics.IncRejectedTransition(action.String(), from.String())
			return err
		}
		booking.Status = next
		if err := repo.UpdateLifecycle(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update booking status")
		}
		updated = booking
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingStatusChanged,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Data: payloads.BookingStatusChangedEvent{
				BookingID: booking.ID,
				OrderID:   booking.OrderID,
				Action:    action,
				From:      from,
				To:        next,
			},
		})
	})
	if err != nil {
		if s.logg != nil && pkgerrors.IsCode(err, pkgerrors.CodeInvalidTransition) {
			logCtx := s.logg.WithFields(s.logg.WithBookingID(ctx, id.String()), map[string]any{
				"action": action.String(),
				"from":   from.String(),
			})
			s.logg.Warn(logCtx, "booking transition refused")
		}
		return nil, asTyped(err, "update booking status")
	}

	s.metrics.IncTransition(action.String(), from.String(), updated.Status.String())
	if s.logg != nil {
		logCtx := s.logg.WithFields(s.logg.WithBookingID(ctx, updated.ID.String()), map[string]any{
			"action": action.String(),
			"from":   from.String(),
			"to":     updated.Status.String(),
		})
		s.logg.Info(logCtx, "booking status changed")
	}
	return &TransitionResult{Message: transitionMessages[action], Booking: NewBookingDTO(updated)}, nil
}

func (s *service) buildBooking(input CreateOrderInput) (*models.Booking, error) {
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	if len(input.Cart) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart must contain at least one item")
	}
	lines := make([]types.OrderLine, 0, len(input.Cart))
	for i, line := range input.Cart {
		line.ProductID = strings.TrimSpace(line.ProductID)
		line.Title = strings.TrimSpace(line.Title)
		switch {
		case line.ProductID == "":
			return nil, lineError(i, "productId is required")
		case line.Quantity < 1:
			return nil, lineError(i, "quantity must be at least 1")
		case line.Price.IsNegative():
			return nil, lineError(i, "price cannot be negative")
		}
		lines = append(lines, line)
	}

	address := normalizeAddress(input.Address)
	var missing []string
	for field, value := range map[string]string{
		"fullName": address.FullName,
		"street":   address.Street,
		"city":     address.City,
		"zipCode":  address.ZipCode,
		"phone":    address.Phone,
	} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is incomplete").
			WithDetails(map[string]any{"missing": sortedStrings(missing)})
	}

	amounts := input.Amounts
	if amounts.Subtotal.IsNegative() || amounts.Shipping.IsNegative() || amounts.Tax.IsNegative() || amounts.Total.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amounts cannot be negative")
	}

	paymentType := strings.TrimSpace(input.PaymentType)
	if paymentType == "" {
		paymentType = defaultPaymentType
	}
	orderDate := s.now()
	if input.OrderDate != nil && !input.OrderDate.IsZero() {
		orderDate = input.OrderDate.UTC()
	}

	return &models.Booking{
		OrderID:     strings.TrimSpace(input.OrderID),
		UserID:      userID,
		Cart:        lines,
		Address:     address,
		PaymentType: paymentType,
		Amounts:     amounts,
		TotalAmount: amounts.Total,
		Status:      enums.BookingStatusPending,
		OrderDate:   orderDate,
	}, nil
}

// MapLookupErr converts a repository lookup failure into a typed error.
func MapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Booking not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load booking")
}

func normalizeAddress(a types.Address) types.Address {
	return types.Address{
		FullName: strings.TrimSpace(a.FullName),
		Street:   strings.TrimSpace(a.Street),
		City:     strings.TrimSpace(a.City),
		State:    strings.TrimSpace(a.State),
		ZipCode:  strings.TrimSpace(a.ZipCode),
		Phone:    strings.TrimSpace(a.Phone),
	}
}

func lineError(index int, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).
		WithDetails(map[string]any{"line": index})
}

func sortedStrings(values []string) []string {
	sort.Strings(values)
	return values
}

func asTyped(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}
