package orders

import (
	"context"

	"github.com/angelmondragon/homeservices-backend/internal/repo"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	repo.Base
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{Base: r.Bound(tx)}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	if err := r.DB(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.DB(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.ForUpdate(ctx).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.Booking, error) {
	q := r.DB(ctx).Model(&models.Booking{})
	if filters.UserID != "" {
		q = q.Where("user_id = ?", filters.UserID)
	}
	var bookings []models.Booking
	if err := q.Order("order_date DESC").Order("id DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListAssignedTo returns the staff work queue, oldest order date first.
func (r *repository) ListAssignedTo(ctx context.Context, staffID uuid.UUID, statuses []enums.BookingStatus) ([]models.Booking, error) {
	q := r.DB(ctx).
		Model(&models.Booking{}).
		Where("assigned_staff_id = ?", staffID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var bookings []models.Booking
	if err := q.Order("order_date ASC").Order("id ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateLifecycle writes the only mutable columns of a booking.
func (r *repository) UpdateLifecycle(ctx context.Context, booking *models.Booking) error {
	return r.DB(ctx).
		Model(booking).
		Select("status", "assigned_staff", "assigned_staff_id", "updated_at").
		Updates(booking).Error
}

// ListGeneratedOrderIDs returns every order id carrying the generated prefix.
func (r *repository) ListGeneratedOrderIDs(ctx context.Context, prefix string) ([]string, error) {
	var ids []string
	err := r.DB(ctx).
		Model(&models.Booking{}).
		Where("order_id LIKE ?", prefix+"%").
		Pluck("order_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
