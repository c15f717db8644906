package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart operations. Every mutation locks the cart row, edits
// the item list in memory and writes it back in one transaction.
type Service interface {
	GetCart(ctx context.Context, userID string) (*CartDTO, error)
	AddItem(ctx context.Context, userID string, item ProductRef) (*CartDTO, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID string) (*CartDTO, error)
	Clear(ctx context.Context, userID string) (*CartDTO, error)
	ClearIfExists(ctx context.Context, userID string) (*CartDTO, error)
}

// ProductRef is the product snapshot a client sends when adding to the cart.
type ProductRef struct {
	ProductID string
	Title     string
	Price     decimal.Decimal
	Image     string
	Category  string
}

type service struct {
	repo        CartRepository
	tx          txRunner
	productRepo productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, productRepo productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		productRepo: productRepo,
	}, nil
}

// GetCart never fails for an unknown user; it returns an empty cart instead.
func (s *service) GetCart(ctx context.Context, userID string) (*CartDTO, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	cart, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyCart(userID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load cart")
	}
	return NewCartDTO(cart), nil
}

// AddItem creates the cart on first use, then bumps an existing line by one
// or appends a new line with quantity 1. An existing line keeps its snapshot
// unless the catalog supplied fresh values.
func (s *service) AddItem(ctx context.Context, userID string, item ProductRef) (*CartDTO, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	item.ProductID = strings.TrimSpace(item.ProductID)
	if item.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is required")
	}
	fromCatalog, err := s.refreshFromCatalog(ctx, &item)
	if err != nil {
		return nil, err
	}

	var updated *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.EnsureExists(ctx, userID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: create cart")
		}
		cart, err := repo.FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: lock cart")
		}

		if idx := cart.Items.IndexOf(item.ProductID); idx >= 0 {
			line := &cart.Items[idx]
			line.Quantity++
			if fromCatalog {
				line.Title = item.Title
				line.Price = item.Price
				line.Image = item.Image
				line.Category = item.Category
			}
		} else {
			cart.Items = append(cart.Items, types.CartLine{
				ProductID: item.ProductID,
				Title:     item.Title,
				Price:     item.Price,
				Image:     item.Image,
				Category:  item.Category,
				Quantity:  1,
			})
		}

		if _, err := repo.Save(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: save cart")
		}
		updated = cart
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "add cart item")
	}
	return NewCartDTO(updated), nil
}

func (s *service) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*CartDTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]any{"quantity": quantity})
	}
	return s.mutateLine(ctx, userID, productID, func(items types.CartLines, idx int) types.CartLines {
		items[idx].Quantity = quantity
		return items
	})
}

func (s *service) RemoveItem(ctx context.Context, userID, productID string) (*CartDTO, error) {
	return s.mutateLine(ctx, userID, productID, func(items types.CartLines, idx int) types.CartLines {
		return append(items[:idx], items[idx+1:]...)
	})
}

// Clear empties the cart and fails when the user has none.
func (s *service) Clear(ctx context.Context, userID string) (*CartDTO, error) {
	return s.clear(ctx, userID, true)
}

// ClearIfExists empties an existing cart. A user without a cart gets an empty
// value and no row is created.
func (s *service) ClearIfExists(ctx context.Context, userID string) (*CartDTO, error) {
	return s.clear(ctx, userID, false)
}

func (s *service) clear(ctx context.Context, userID string, strict bool) (*CartDTO, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}

	var updated *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) && !strict {
				return nil
			}
			return mapCartLookupErr(err)
		}
		cart.Items = types.CartLines{}
		if _, err := repo.Save(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: clear cart")
		}
		updated = cart
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "clear cart")
	}
	if updated == nil {
		return emptyCart(userID), nil
	}
	return NewCartDTO(updated), nil
}

func (s *service) mutateLine(ctx context.Context, userID, productID string, apply func(items types.CartLines, idx int) types.CartLines) (*CartDTO, error) {
	userID, err := requireUserID(userID)
	if err != nil {
		return nil, err
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "productId is required")
	}

	var updated *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			return mapCartLookupErr(err)
		}
		idx := cart.Items.IndexOf(productID)
		if idx < 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found in cart")
		}
		cart.Items = apply(cart.Items, idx)
		if _, err := repo.Save(ctx, cart); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: save cart")
		}
		updated = cart
		return nil
	})
	if err != nil {
		return nil, asTyped(err, "update cart")
	}
	return NewCartDTO(updated), nil
}

// refreshFromCatalog overwrites the client supplied snapshot with catalog data
// when the product id is known and reports whether it did. Unknown ids keep
// the client values.
func (s *service) refreshFromCatalog(ctx context.Context, item *ProductRef) (bool, error) {
	id, err := uuid.Parse(item.ProductID)
	if err != nil {
		return false, nil
	}
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load product")
	}
	item.Title = product.Name
	item.Price = product.Price
	item.Image = product.Image
	item.Category = product.Category
	return true, nil
}

func requireUserID(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	return userID, nil
}

func mapCartLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Cart not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load cart")
}

func asTyped(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}
