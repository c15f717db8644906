// Package assignment attaches staff members to bookings and serves the staff
// work queue.
package assignment

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/homeservices-backend/internal/orders"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/metrics"
	"github.com/angelmondragon/homeservices-backend/pkg/outbox"
	"github.com/angelmondragon/homeservices-backend/pkg/outbox/payloads"
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

type staffDirectory interface {
	Snapshot(ctx context.Context, id uuid.UUID) (*types.StaffSnapshot, error)
}

// Service assigns staff and lists assigned bookings.
type Service interface {
	Assign(ctx context.Context, bookingID uuid.UUID, staffID string) (*orders.TransitionResult, error)
	ListAssignedTo(ctx context.Context, staffID uuid.UUID, status *enums.BookingStatus) ([]orders.BookingDTO, error)
}

type service struct {
	repo    orders.Repository
	tx      txRunner
	staff   staffDirectory
	outbox  outboxPublisher
	metrics *metrics.BookingMetrics
	logg    *logger.Logger
}

// NewService wires the assignment engine.
func NewService(repo orders.Repository, tx txRunner, staff staffDirectory, outbox outboxPublisher, bookingMetrics *metrics.BookingMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("booking repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if staff == nil {
		return nil, fmt.Errorf("staff directory required")
	}
	if outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		staff:   staff,
		outbox:  outbox,
		metrics: bookingMetrics,
		logg:    logg,
	}, nil
}

// Assign stores a snapshot of the staff member on the booking. Reassigning
// replaces the snapshot; confirmed and assigned bookings keep their status.
func (s *service) Assign(ctx context.Context, bookingID uuid.UUID, staffID string) (*orders.TransitionResult, error) {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Staff ID is required")
	}

	if _, err := s.repo.FindByID(ctx, bookingID); err != nil {
		return nil, orders.MapLookupErr(err)
	}
	memberID, err := uuid.Parse(staffID)
	if err != nil {
		return nil, staffNotFound()
	}
	snapshot, err := s.staff.Snapshot(ctx, memberID)
	if err != nil {
		return nil, err
	}

	var (
		updated  *models.Booking
		from     enums.BookingStatus
		previous *uuid.UUID
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return orders.MapLookupErr(err)
		}

		from = booking.Status.Normalize()
		next, err := orders.NextStatus(booking.Status, enums.BookingActionAssign)
		if err != nil {
			s.metrics.IncRejectedTransition(enums.BookingActionAssign.String(), from.String())
			return err
		}

		previous = booking.AssignedStaffID
		booking.Status = next
		booking.AssignedStaff = snapshot
		booking.AssignedStaffID = &memberID
		if err := repo.UpdateLifecycle(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: assign staff")
		}
		updated = booking

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBookingAssigned,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Data: payloads.BookingAssignedEvent{
				BookingID: booking.ID,
				OrderID:   booking.OrderID,
				Staff:     *snapshot,
				Previous:  previous,
				Status:    next,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign staff")
	}

	s.metrics.IncTransition(enums.BookingActionAssign.String(), from.String(), updated.Status.String())
	if s.logg != nil {
		logCtx := s.logg.WithStaffID(s.logg.WithBookingID(ctx, updated.ID.String()), staffID)
		if previous != nil {
			logCtx = s.logg.WithField(logCtx, "previous_staff_id", previous.String())
		}
		s.logg.Info(logCtx, "staff assigned")
	}
	return &orders.TransitionResult{
		Message: "Staff assigned successfully",
		Booking: orders.NewBookingDTO(updated),
	}, nil
}

func (s *service) ListAssignedTo(ctx context.Context, staffID uuid.UUID, status *enums.BookingStatus) ([]orders.BookingDTO, error) {
	if staffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Staff ID is required")
	}
	var statuses []enums.BookingStatus
	if status != nil {
		statuses = statusFilter(*status)
	}
	bookings, err := s.repo.ListAssignedTo(ctx, staffID, statuses)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list assigned bookings")
	}
	return orders.NewBookingDTOs(bookings), nil
}

// statusFilter expands pending to the legacy values stored for it.
func statusFilter(status enums.BookingStatus) []enums.BookingStatus {
	if status.Normalize() == enums.BookingStatusPending {
		return []enums.BookingStatus{enums.BookingStatusPending, enums.BookingStatusUnassigned, ""}
	}
	return []enums.BookingStatus{status}
}

func staffNotFound() error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "Staff member not found")
}
