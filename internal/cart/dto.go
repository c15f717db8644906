package cart

import (
	"time"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"github.com/google/uuid"
)

// CartDTO is the cart returned to clients. A user without a stored cart gets
// an empty value with no id.
type CartDTO struct {
	ID        *uuid.UUID       `json:"_id,omitempty"`
	UserID    string           `json:"userId"`
	Items     []types.CartLine `json:"items"`
	UpdatedAt *time.Time       `json:"updatedAt,omitempty"`
}

func NewCartDTO(cart *models.Cart) *CartDTO {
	id := cart.ID
	updated := cart.UpdatedAt
	return &CartDTO{
		ID:        &id,
		UserID:    cart.UserID,
		Items:     append([]types.CartLine{}, cart.Items...),
		UpdatedAt: &updated,
	}
}

func emptyCart(userID string) *CartDTO {
	return &CartDTO{UserID: userID, Items: []types.CartLine{}}
}
