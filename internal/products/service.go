package products

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/homeservices-backend/internal/analytics"
	"github.com/angelmondragon/homeservices-backend/pkg/db"
	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/pagination"
	"github.com/angelmondragon/homeservices-backend/pkg/sequence"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultImage    = "https://via.placeholder.com/40"
	defaultRating   = 4.8
	defaultDuration = "60 mins"

	maxNameLength        = 100
	maxDescriptionLength = 500
)

var skuPattern = regexp.MustCompile(`^[A-Z0-9-]+$`)

// Service exposes catalog management operations.
type Service interface {
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	List(ctx context.Context, filters ListFilters) (*ListResult, error)
	GetMany(ctx context.Context, ids []uuid.UUID) ([]ProductDTO, error)
	Stats(ctx context.Context) (*analytics.ProductStats, error)
	SeedSKUSequence(ctx context.Context) error
}

// CreateProductInput holds the validated payload to create a product. Status
// is never accepted; it is derived from Stock and MaxStock.
type CreateProductInput struct {
	Name         string
	Description  string
	Type         string
	Category     string
	SubCategory  string
	SKU          string
	Price        decimal.Decimal
	OldPrice     *decimal.Decimal
	Discount     int
	Stock        int
	MaxStock     int
	Image        string
	Overview     []string
	ThingsToKnow []string
	Procedure    []types.ProcedureStep
	Precautions  []string
	FAQs         []types.FAQ
	Rating       *float64
	Time         string
	Tag          string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name         *string
	Description  *string
	Type         *string
	Category     *string
	SubCategory  *string
	SKU          *string
	Price        *decimal.Decimal
	OldPrice     *decimal.Decimal
	Discount     *int
	Stock        *int
	MaxStock     *int
	Image        *string
	Overview     *[]string
	ThingsToKnow *[]string
	Procedure    *[]types.ProcedureStep
	Precautions  *[]string
	FAQs         *[]types.FAQ
	Rating       *float64
	Time         *string
	Tag          *string
}

type statsReader interface {
	ProductStats(ctx context.Context) (*analytics.ProductStats, error)
}

type service struct {
	repo      *Repository
	dbClient  *db.Client
	allocator sequence.Allocator
	stats     statsReader
	logg      *logger.Logger
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, allocator sequence.Allocator, stats statsReader, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if stats == nil {
		return nil, fmt.Errorf("stats reader required")
	}
	return &service{
		repo:      repo,
		dbClient:  dbClient,
		allocator: allocator,
		stats:     stats,
		logg:      logg,
	}, nil
}

// Create stores a new catalog entry, allocating a PRD-### SKU when none is given.
func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	product := &models.Product{
		Name:         strings.TrimSpace(input.Name),
		Description:  input.Description,
		Type:         strings.TrimSpace(input.Type),
		Category:     strings.TrimSpace(input.Category),
		SubCategory:  strings.TrimSpace(input.SubCategory),
		Price:        input.Price,
		OldPrice:     input.OldPrice,
		Discount:     input.Discount,
		Stock:        input.Stock,
		MaxStock:     input.MaxStock,
		Image:        strings.TrimSpace(input.Image),
		Overview:     input.Overview,
		ThingsToKnow: input.ThingsToKnow,
		Procedure:    input.Procedure,
		Precautions:  input.Precautions,
		FAQs:         input.FAQs,
		Rating:       defaultRating,
		Duration:     strings.TrimSpace(input.Time),
		Tag:          strings.TrimSpace(input.Tag),
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if product.Image == "" {
		product.Image = defaultImage
	}
	if product.Duration == "" {
		product.Duration = defaultDuration
	}
	if strings.TrimSpace(input.SKU) != "" {
		sku, err := normalizeSKU(input.SKU)
		if err != nil {
			return nil, err
		}
		product.SKU = sku
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	if product.SKU == "" {
		n, err := s.allocator.Next(ctx, sequence.ProductSKU)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "allocate sku")
		}
		product.SKU = sequence.FormatSKU(n)
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		taken, err := txRepo.SKUExists(ctx, product.SKU, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: check sku")
		}
		if taken {
			return errSKUTaken()
		}
		if _, err := txRepo.Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "ux_products_sku") {
				return errSKUTaken()
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert product")
		}
		return nil
	}); err != nil {
		return nil, asTyped(err, "create product")
	}

	return NewProductDTO(product), nil
}

// Update applies a partial update and recomputes status.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	var sku string
	if input.SKU != nil {
		normalized, err := normalizeSKU(*input.SKU)
		if err != nil {
			return nil, err
		}
		sku = normalized
	}

	var updated *models.Product
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapLookupErr(err)
		}

		applyUpdateToProduct(product, input)
		if input.SKU != nil && sku != product.SKU {
			taken, err := txRepo.SKUExists(ctx, sku, &product.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: check sku")
			}
			if taken {
				return errSKUTaken()
			}
			product.SKU = sku
		}
		if err := validateProduct(product); err != nil {
			return err
		}

		if _, err := txRepo.Save(ctx, product); err != nil {
			if db.IsUniqueViolation(err, "ux_products_sku") {
				return errSKUTaken()
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update product")
		}
		updated = product
		return nil
	}); err != nil {
		return nil, asTyped(err, "update product")
	}

	return NewProductDTO(updated), nil
}

// AdjustStock changes stock by delta under a row lock so concurrent
// adjustments never lose updates.
func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*ProductDTO, error) {
	var updated *models.Product
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		product, err := txRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return mapLookupErr(err)
		}

		next := product.Stock + delta
		if next < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "Stock cannot be negative").
				WithDetails(map[string]any{"stock": product.Stock, "delta": delta})
		}
		if next > product.MaxStock {
			return pkgerrors.New(pkgerrors.CodeValidation, "Stock cannot exceed max stock").
				WithDetails(map[string]any{"stock": product.Stock, "delta": delta, "maxStock": product.MaxStock})
		}
		product.Stock = next

		if _, err := txRepo.Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: adjust stock")
		}
		updated = product
		return nil
	}); err != nil {
		return nil, asTyped(err, "adjust stock")
	}

	return NewProductDTO(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete product")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupErr(err)
	}
	return NewProductDTO(product), nil
}

// List returns the catalog newest first. Pagination is applied only when the
// caller asks for it.
func (s *service) List(ctx context.Context, filters ListFilters) (*ListResult, error) {
	if filters.Status != "" && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter").
			WithDetails(map[string]any{"status": filters.Status})
	}

	if !filters.paginated() {
		rows, err := s.repo.List(ctx, filters, nil, 0)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list products")
		}
		return &ListResult{Products: newProductDTOs(rows)}, nil
	}

	cursor, err := pagination.ParseCursor(filters.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(filters.Pagination.Limit)
	rows, err := s.repo.List(ctx, filters, cursor, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list products")
	}

	rows, next := pagination.Page(rows, limit, func(p models.Product) pagination.Cursor {
		return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
	})
	return &ListResult{Products: newProductDTOs(rows), NextCursor: next}, nil
}

// GetMany returns the known products among ids, in request order. Unknown
// and duplicate ids are skipped.
func (s *service) GetMany(ctx context.Context, ids []uuid.UUID) ([]ProductDTO, error) {
	rows, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load products")
	}
	byID := make(map[uuid.UUID]*models.Product, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	out := make([]ProductDTO, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := byID[id]; ok {
			out = append(out, *NewProductDTO(product))
		}
	}
	return out, nil
}

func (s *service) Stats(ctx context.Context) (*analytics.ProductStats, error) {
	return s.stats.ProductStats(ctx)
}

// SeedSKUSequence raises the SKU counter to the highest PRD-### already stored
// so generated SKUs never collide with existing rows.
func (s *service) SeedSKUSequence(ctx context.Context) error {
	skus, err := s.repo.ListGeneratedSKUs(ctx, sequence.SKUPrefix)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list skus")
	}
	floor := sequence.MaxSKU(skus)
	if floor == 0 {
		return nil
	}
	if err := s.allocator.Seed(ctx, sequence.ProductSKU, floor); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed sku sequence")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "sku_floor", floor), "sku sequence seeded")
	}
	return nil
}

func applyUpdateToProduct(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Type != nil {
		product.Type = strings.TrimSpace(*input.Type)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.SubCategory != nil {
		product.SubCategory = strings.TrimSpace(*input.SubCategory)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.OldPrice != nil {
		oldPrice := *input.OldPrice
		product.OldPrice = &oldPrice
	}
	if input.Discount != nil {
		product.Discount = *input.Discount
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.MaxStock != nil {
		product.MaxStock = *input.MaxStock
	}
	if input.Image != nil {
		product.Image = strings.TrimSpace(*input.Image)
	}
	if input.Overview != nil {
		product.Overview = append([]string{}, (*input.Overview)...)
	}
	if input.ThingsToKnow != nil {
		product.ThingsToKnow = append([]string{}, (*input.ThingsToKnow)...)
	}
	if input.Procedure != nil {
		product.Procedure = append([]types.ProcedureStep{}, (*input.Procedure)...)
	}
	if input.Precautions != nil {
		product.Precautions = append([]string{}, (*input.Precautions)...)
	}
	if input.FAQs != nil {
		product.FAQs = append([]types.FAQ{}, (*input.FAQs)...)
	}
	if input.Rating != nil {
		product.Rating = *input.Rating
	}
	if input.Time != nil {
		product.Duration = strings.TrimSpace(*input.Time)
	}
	if input.Tag != nil {
		product.Tag = strings.TrimSpace(*input.Tag)
	}
}

func normalizeSKU(raw string) (string, error) {
	sku := strings.ToUpper(strings.TrimSpace(raw))
	if !skuPattern.MatchString(sku) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "SKU can only contain letters, numbers, and hyphens").
			WithDetails(map[string]any{"sku": raw})
	}
	return sku, nil
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return invalidField("name", "Product name is required")
	case utf8.RuneCountInString(p.Name) > maxNameLength:
		return invalidField("name", "Product name cannot exceed 100 characters")
	case strings.TrimSpace(p.Description) == "":
		return invalidField("description", "Product description is required")
	case utf8.RuneCountInString(p.Description) > maxDescriptionLength:
		return invalidField("description", "Description cannot exceed 500 characters")
	case p.Type == "":
		return invalidField("type", "Product type is required")
	case p.Category == "":
		return invalidField("category", "Product category is required")
	case p.Price.IsNegative():
		return invalidField("price", "Price cannot be negative")
	case p.Discount < 0:
		return invalidField("discount", "Discount cannot be negative")
	case p.Discount > 100:
		return invalidField("discount", "Discount cannot exceed 100%")
	case p.MaxStock < 1:
		return invalidField("maxStock", "Max stock must be at least 1")
	case p.Stock < 0:
		return invalidField("stock", "Stock cannot be negative")
	case p.Stock > p.MaxStock:
		return invalidField("stock", "Stock cannot exceed max stock")
	case p.Rating < 0 || p.Rating > 5:
		return invalidField("rating", "Rating must be between 0 and 5")
	}
	return nil
}

func invalidField(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"field": field})
}

func errSKUTaken() error {
	return pkgerrors.New(pkgerrors.CodeConflict, "SKU must be unique")
}

func mapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load product")
}

func asTyped(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}
