package types

import "github.com/shopspring/decimal"

// CartLine is one product line of a user's cart. The descriptive fields are
// a snapshot taken when the product was first added.
type CartLine struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
}

// CartLines keeps the insertion order of cart lines.
type CartLines []CartLine

// IndexOf returns the position of the line holding productID, or -1.
func (l CartLines) IndexOf(productID string) int {
	for i := range l {
		if l[i].ProductID == productID {
			return i
		}
	}
	return -1
}
