package types

import (
	"github.com/shopspring/decimal"
)

// OrderLine is a cart line frozen into a booking.
type OrderLine struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Amounts is the precomputed price breakdown supplied at checkout.
type Amounts struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// StaffSnapshot is a point-in-time copy of a staff member's public identity
// stored on a booking at assignment time. It is denormalized on purpose: later
// directory edits never rewrite historical bookings.
type StaffSnapshot struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}
