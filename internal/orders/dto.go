package orders

import (
	"time"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultPaymentType = "Cash on Delivery"

// CreateOrderInput is a checkout snapshot. Amounts are taken as supplied.
type CreateOrderInput struct {
	OrderID     string
	UserID      string
	Cart        []types.OrderLine
	Address     types.Address
	PaymentType string
	Amounts     types.Amounts
	OrderDate   *time.Time
}

// BookingDTO is the API shape of a booking.
type BookingDTO struct {
	ID            uuid.UUID            `json:"_id"`
	OrderID       string               `json:"orderId"`
	UserID        string               `json:"userId"`
	Cart          []types.OrderLine    `json:"cart"`
	Address       types.Address        `json:"address"`
	PaymentType   string               `json:"paymentType"`
	Amounts       types.Amounts        `json:"amounts"`
	TotalAmount   decimal.Decimal      `json:"totalAmount"`
	Status        enums.BookingStatus  `json:"status"`
	AssignedStaff *types.StaffSnapshot `json:"assignedStaff"`
	OrderDate     time.Time            `json:"orderDate"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// TransitionResult pairs the updated booking with a human readable message.
type TransitionResult struct {
	Message string      `json:"message"`
	Booking *BookingDTO `json:"booking"`
}

// NewBookingDTO maps a stored booking. Legacy empty statuses surface as pending.
func NewBookingDTO(b *models.Booking) *BookingDTO {
	if b == nil {
		return nil
	}
	cart := b.Cart
	if cart == nil {
		cart = []types.OrderLine{}
	}
	status := b.Status
	if status == "" {
		status = enums.BookingStatusPending
	}
	return &BookingDTO{
		ID:            b.ID,
		OrderID:       b.OrderID,
		UserID:        b.UserID,
		Cart:          cart,
		Address:       b.Address,
		PaymentType:   b.PaymentType,
		Amounts:       b.Amounts,
		TotalAmount:   b.TotalAmount,
		Status:        status,
		AssignedStaff: b.AssignedStaff,
		OrderDate:     b.OrderDate,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// NewBookingDTOs maps a slice, never returning nil.
func NewBookingDTOs(bookings []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(bookings))
	for i := range bookings {
		out = append(out, *NewBookingDTO(&bookings[i]))
	}
	return out
}
