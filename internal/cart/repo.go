package cart

import (
	"context"

	"github.com/angelmondragon/homeservices-backend/internal/repo"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes persistence operations for user carts.
type Repository struct {
	repo.Base
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	return &Repository{Base: r.Bound(tx)}
}

// FindByUserID loads the cart owned by userID.
func (r *Repository) FindByUserID(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindByUserIDForUpdate loads the cart and holds its row lock until the
// surrounding transaction ends.
func (r *Repository) FindByUserIDForUpdate(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.ForUpdate(ctx).
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// EnsureExists inserts an empty cart for userID unless one is already stored.
func (r *Repository) EnsureExists(ctx context.Context, userID string) error {
	cart := &models.Cart{UserID: userID, Items: types.CartLines{}}
	return r.DB(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(cart).Error
}

// Save writes the whole item list back.
func (r *Repository) Save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {
	if err := r.DB(ctx).Save(cart).Error; err != nil {
		return nil, err
	}
	return cart, nil
}
