package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
)

// BookingCreatedEvent is emitted once per placed order.
type BookingCreatedEvent struct {
	BookingID   uuid.UUID           `json:"bookingId"`
	OrderID     string              `json:"orderId"`
	UserID      string              `json:"userId"`
	Status      enums.BookingStatus `json:"status"`
	LineCount   int                 `json:"lineCount"`
	Total       decimal.Decimal     `json:"total"`
	PaymentType string              `json:"paymentType"`
	OrderDate   time.Time           `json:"orderDate"`
}

// BookingAssignedEvent is emitted whenever a staff snapshot is written to a booking.
type BookingAssignedEvent struct {
	BookingID uuid.UUID           `json:"bookingId"`
	OrderID   string              `json:"orderId"`
	Staff     types.StaffSnapshot `json:"staff"`
	Previous  *uuid.UUID          `json:"previousStaffId,omitempty"`
	Status    enums.BookingStatus `json:"status"`
}

// BookingStatusChangedEvent is emitted for accept/reject/complete/not-completed.
type BookingStatusChangedEvent struct {
	BookingID uuid.UUID           `json:"bookingId"`
	OrderID   string              `json:"orderId"`
	Action    enums.BookingAction `json:"action"`
	From      enums.BookingStatus `json:"from"`
	To        enums.BookingStatus `json:"to"`
}
