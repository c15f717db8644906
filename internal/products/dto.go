package products

import (
	"time"

	"github.com/angelmondragon/homeservices-backend/pkg/db/models"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the catalog entry returned to clients.
type ProductDTO struct {
	ID           uuid.UUID             `json:"_id"`
	Name         string                `json:"name"`
	Description  string                `json:"description"`
	Type         string                `json:"type"`
	Category     string                `json:"category"`
	SubCategory  string                `json:"subCategory,omitempty"`
	SKU          string                `json:"sku"`
	Price        decimal.Decimal       `json:"price"`
	OldPrice     *decimal.Decimal      `json:"oldPrice,omitempty"`
	Discount     int                   `json:"discount"`
	Stock        int                   `json:"stock"`
	MaxStock     int                   `json:"maxStock"`
	Status       string                `json:"status"`
	Image        string                `json:"image"`
	Overview     []string              `json:"overview"`
	ThingsToKnow []string              `json:"thingsToKnow"`
	Procedure    []types.ProcedureStep `json:"procedure"`
	Precautions  []string              `json:"precautions"`
	FAQs         []types.FAQ           `json:"faqs"`
	Rating       float64               `json:"rating"`
	Time         string                `json:"time"`
	Tag          string                `json:"tag"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// NewProductDTO builds a DTO from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	return &ProductDTO{
		ID:           product.ID,
		Name:         product.Name,
		Description:  product.Description,
		Type:         product.Type,
		Category:     product.Category,
		SubCategory:  product.SubCategory,
		SKU:          product.SKU,
		Price:        product.Price,
		OldPrice:     product.OldPrice,
		Discount:     product.Discount,
		Stock:        product.Stock,
		MaxStock:     product.MaxStock,
		Status:       string(product.Status),
		Image:        product.Image,
		Overview:     nonNilStrings(product.Overview),
		ThingsToKnow: nonNilStrings(product.ThingsToKnow),
		Procedure:    append([]types.ProcedureStep{}, product.Procedure...),
		Precautions:  nonNilStrings(product.Precautions),
		FAQs:         append([]types.FAQ{}, product.FAQs...),
		Rating:       product.Rating,
		Time:         product.Duration,
		Tag:          product.Tag,
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}

func nonNilStrings(values []string) []string {
	return append([]string{}, values...)
}

func newProductDTOs(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, *NewProductDTO(&products[i]))
	}
	return out
}
