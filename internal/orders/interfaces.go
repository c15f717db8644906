package orders

import (
	"context"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the bookings table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, filters ListFilters) ([]models.Booking, error)
	ListAssignedTo(ctx context.Context, staffID uuid.UUID, statuses []enums.BookingStatus) ([]models.Booking, error)
	UpdateLifecycle(ctx context.Context, booking *models.Booking) error
	ListGeneratedOrderIDs(ctx context.Context, prefix string) ([]string, error)
}

// ListFilters narrows the booking list. A zero value lists every booking.
type ListFilters struct {
	UserID string
}
