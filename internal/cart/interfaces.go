package cart

import (
	"context"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindByUserID(ctx context.Context, userID string) (*models.Cart, error)
	FindByUserIDForUpdate(ctx context.Context, userID string) (*models.Cart, error)
	EnsureExists(ctx context.Context, userID string) error
	Save(ctx context.Context, cart *models.Cart) (*models.Cart, error)
}
