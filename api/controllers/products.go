package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/homeservices-backend/api/responses"
	"github.com/angelmondragon/homeservices-backend/api/validators"
	productsvc "github.com/angelmondragon/homeservices-backend/internal/products"
	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeservices-backend/pkg/errors"
	"github.com/angelmondragon/homeservices-backend/pkg/logger"
	"github.com/angelmondragon/homeservices-backend/pkg/pagination"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
)

const (
	productNotFound = "Product not found"
	maxBatchIDs     = 100
	maxSearchLength = 100
)

// CreateProduct adds a catalog entry. The SKU is generated when omitted.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct applies a partial update; omitted fields keep their value.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "id", productNotFound)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func AdjustProductStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "id", productNotFound)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdjustStock(r.Context(), id, *payload.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "id", productNotFound)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "Product deleted successfully"})
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.PathUUID(r, "id", productNotFound)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// ListProducts browses the catalog. Supplying limit or cursor switches to
// keyset pagination.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		limit, err := validators.QueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		filters := productsvc.ListFilters{
			Category: strings.TrimSpace(query.Get("category")),
			Status:   enums.ProductStatus(strings.ToLower(strings.TrimSpace(query.Get("status")))),
			Search:   validators.QueryString(r, "search", maxSearchLength),
			Pagination: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(query.Get("cursor")),
			},
		}

		result, err := svc.List(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// BatchProducts resolves a comma separated ids list in request order.
func BatchProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		ids, err := parseIDList(r.URL.Query().Get("ids"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.GetMany(r.Context(), ids)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func ProductStats(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

func parseIDList(raw string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id").WithDetails(map[string]any{"id": part})
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ids is required")
	}
	if len(ids) > maxBatchIDs {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many ids").WithDetails(map[string]any{"max": maxBatchIDs})
	}
	return ids, nil
}

type createProductRequest struct {
	Name         string                `json:"name" validate:"required"`
	Description  string                `json:"description" validate:"required"`
	Type         string                `json:"type" validate:"required"`
	Category     string                `json:"category" validate:"required"`
	SubCategory  string                `json:"subCategory"`
	SKU          string                `json:"sku"`
	Price        *decimal.Decimal      `json:"price" validate:"required"`
	OldPrice     *decimal.Decimal      `json:"oldPrice,omitempty"`
	Discount     int                   `json:"discount" validate:"min=0,max=100"`
	Stock        int                   `json:"stock" validate:"min=0"`
	MaxStock     int                   `json:"maxStock" validate:"required,min=1"`
	Image        string                `json:"image"`
	Overview     []string              `json:"overview"`
	ThingsToKnow []string              `json:"thingsToKnow"`
	Procedure    []types.ProcedureStep `json:"procedure"`
	Precautions  []string              `json:"precautions"`
	FAQs         []types.FAQ           `json:"faqs"`
	Rating       *float64              `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Time         string                `json:"time"`
	Tag          string                `json:"tag"`
}

func (p createProductRequest) toInput() productsvc.CreateProductInput {
	return productsvc.CreateProductInput{
		Name:         p.Name,
		Description:  p.Description,
		Type:         p.Type,
		Category:     p.Category,
		SubCategory:  p.SubCategory,
		SKU:          p.SKU,
		Price:        *p.Price,
		OldPrice:     p.OldPrice,
		Discount:     p.Discount,
		Stock:        p.Stock,
		MaxStock:     p.MaxStock,
		Image:        p.Image,
		Overview:     p.Overview,
		ThingsToKnow: p.ThingsToKnow,
		Procedure:    p.Procedure,
		Precautions:  p.Precautions,
		FAQs:         p.FAQs,
		Rating:       p.Rating,
		Time:         p.Time,
		Tag:          p.Tag,
	}
}

type updateProductRequest struct {
	Name         *string                `json:"name,omitempty"`
	Description  *string                `json:"description,omitempty"`
	Type         *string                `json:"type,omitempty"`
	Category     *string                `json:"category,omitempty"`
	SubCategory  *string                `json:"subCategory,omitempty"`
	SKU          *string                `json:"sku,omitempty"`
	Price        *decimal.Decimal       `json:"price,omitempty"`
	OldPrice     *decimal.Decimal       `json:"oldPrice,omitempty"`
	Discount     *int                   `json:"discount,omitempty" validate:"omitempty,min=0,max=100"`
	Stock        *int                   `json:"stock,omitempty" validate:"omitempty,min=0"`
	MaxStock     *int                   `json:"maxStock,omitempty" validate:"omitempty,min=1"`
	Image        *string                `json:"image,omitempty"`
	Overview     *[]string              `json:"overview,omitempty"`
	ThingsToKnow *[]string              `json:"thingsToKnow,omitempty"`
	Procedure    *[]types.ProcedureStep `json:"procedure,omitempty"`
	Precautions  *[]string              `json:"precautions,omitempty"`
	FAQs         *[]types.FAQ           `json:"faqs,omitempty"`
	Rating       *float64               `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"`
	Time         *string                `json:"time,omitempty"`
	Tag          *string                `json:"tag,omitempty"`
}

func (p updateProductRequest) toInput() productsvc.UpdateProductInput {
	return productsvc.UpdateProductInput{
		Name:         p.Name,
		Description:  p.Description,
		Type:         p.Type,
		Category:     p.Category,
		SubCategory:  p.SubCategory,
		SKU:          p.SKU,
		Price:        p.Price,
		OldPrice:     p.OldPrice,
		Discount:     p.Discount,
		Stock:        p.Stock,
		MaxStock:     p.MaxStock,
		Image:        p.Image,
		Overview:     p.Overview,
		ThingsToKnow: p.ThingsToKnow,
		Procedure:    p.Procedure,
		Precautions:  p.Precautions,
		FAQs:         p.FAQs,
		Rating:       p.Rating,
		Time:         p.Time,
		Tag:          p.Tag,
	}
}

type adjustStockRequest struct {
	Delta *int `json:"delta" validate:"required"`
}
