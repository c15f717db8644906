package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
)

// Booking is a placed order. Everything except Status and the assigned staff
// columns is immutable after insert.
type Booking struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	OrderID         string               `gorm:"column:order_id;not null;uniqueIndex:ux_bookings_order_id"`
	UserID          string               `gorm:"column:user_id;not null;index:idx_bookings_user_id"`
	Cart            []types.OrderLine    `gorm:"column:cart;type:jsonb;serializer:json"`
	Address         types.Address        `gorm:"column:address;type:jsonb;serializer:json"`
	PaymentType     string               `gorm:"column:payment_type;not null"`
	Amounts         types.Amounts        `gorm:"column:amounts;type:jsonb;serializer:json"`
	TotalAmount     decimal.Decimal      `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status          enums.BookingStatus  `gorm:"column:status;not null;index:idx_bookings_status"`
	AssignedStaff   *types.StaffSnapshot `gorm:"column:assigned_staff;type:jsonb;serializer:json"`
	AssignedStaffID *uuid.UUID           `gorm:"column:assigned_staff_id;type:uuid;index:idx_bookings_assigned_staff_id"`
	OrderDate       time.Time            `gorm:"column:order_date;not null;index:idx_bookings_order_date"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
