package cart

import (
	"github.com/shopspring/decimal"

	cartsvc "github.com/angelmondragon/homeservices-backend/internal/cart"
)

type addItemRequest struct {
	UserID  string          `json:"userId"`
	Product *productPayload `json:"product"`
}

type productPayload struct {
	ProductID string          `json:"productId"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Category  string          `json:"category,omitempty"`
}

func (p *productPayload) toRef() cartsvc.ProductRef {
	if p == nil {
		return cartsvc.ProductRef{}
	}
	return cartsvc.ProductRef{
		ProductID: p.ProductID,
		Title:     p.Title,
		Price:     p.Price,
		Image:     p.Image,
		Category:  p.Category,
	}
}

type setQuantityRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type removeItemRequest struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}

type clearRequest struct {
	UserID string `json:"userId"`
}
