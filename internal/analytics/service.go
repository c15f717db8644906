// Package analytics serves read-only counters over the catalog and bookings.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// placeholderRating is reported until reviews exist.
// TODO: derive the rating from customer reviews once bookings collect them.
const placeholderRating = 4.5

var pendingStatuses = []enums.BookingStatus{
	enums.BookingStatusPending,
	enums.BookingStatusUnassigned,
	"",
}

// Service provides catalog and staff dashboard counters.
type Service interface {
	ProductStats(ctx context.Context) (*ProductStats, error)
	StaffDashboard(ctx context.Context, staffID uuid.UUID) (*StaffDashboard, error)
}

type service struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

// NewService builds the stats service. loc decides where "today" starts.
func NewService(db *gorm.DB, loc *time.Location) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{db: db, loc: loc, now: time.Now}, nil
}

func (s *service) ProductStats(ctx context.Context) (*ProductStats, error) {
	var out ProductStats
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.products(gctx).Count(&out.TotalProducts).Error
	})
	g.Go(func() error {
		return s.products(gctx).Where("status = ?", enums.ProductStatusLow).Count(&out.LowStockCount).Error
	})
	g.Go(func() error {
		return s.products(gctx).Where("status = ?", enums.ProductStatusOut).Count(&out.OutOfStockCount).Error
	})
	g.Go(func() error {
		return s.products(gctx).Distinct("category").Count(&out.CategoriesCount).Error
	})

	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: product stats")
	}
	return &out, nil
}

func (s *service) StaffDashboard(ctx context.Context, staffID uuid.UUID) (*StaffDashboard, error) {
	if staffID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Staff ID is required")
	}
	out := StaffDashboard{Rating: placeholderRating, TotalEarnings: decimal.Zero}
	startOfDay := StartOfDay(s.now(), s.loc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.assigned(gctx, staffID).
			Where("order_date >= ?", startOfDay).
			Count(&out.TodayAppointments).Error
	})
	g.Go(func() error {
		return s.assigned(gctx, staffID).
			Where("status = ?", enums.BookingStatusCompleted).
			Count(&out.Completed).Error
	})
	g.Go(func() error {
		return s.assigned(gctx, staffID).
			Where("status IN ?", pendingStatuses).
			Count(&out.Pending).Error
	})
	g.Go(func() error {
		var total decimal.NullDecimal
		row := s.assigned(gctx, staffID).
			Where("status = ?", enums.BookingStatusCompleted).
			Select("SUM(total_amount)").
			Row()
		if err := row.Scan(&total); err != nil {
			return err
		}
		if total.Valid {
			out.TotalEarnings = total.Decimal
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: staff dashboard")
	}
	return &out, nil
}

func (s *service) products(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Product{})
}

func (s *service) assigned(ctx context.Context, staffID uuid.UUID) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("assigned_staff_id = ?", staffID)
}
