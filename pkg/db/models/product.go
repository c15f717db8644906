package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/homeservices-backend/pkg/enums"
	"github.com/angelmondragon/homeservices-backend/pkg/types"
)

// Product is a catalog entry (physical product or bookable service).
type Product struct {
	ID           uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	Name         string                `gorm:"column:name;size:100;not null"`
	Description  string                `gorm:"column:description;size:500"`
	Type         string                `gorm:"column:type"`
	Category     string                `gorm:"column:category;index:idx_products_category"`
	SubCategory  string                `gorm:"column:sub_category"`
	SKU          string                `gorm:"column:sku;not null;uniqueIndex:ux_products_sku"`
	Price        decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	OldPrice     *decimal.Decimal      `gorm:"column:old_price;type:numeric(12,2)"`
	Discount     int                   `gorm:"column:discount;not null"`
	Stock        int                   `gorm:"column:stock;not null"`
	MaxStock     int                   `gorm:"column:max_stock;not null"`
	Status       enums.ProductStatus   `gorm:"column:status;not null;index:idx_products_status"`
	Image        string                `gorm:"column:image"`
	Overview     []string              `gorm:"column:overview;type:jsonb;serializer:json"`
	ThingsToKnow []string              `gorm:"column:things_to_know;type:jsonb;serializer:json"`
	Procedure    []types.ProcedureStep `gorm:"column:procedure;type:jsonb;serializer:json"`
	Precautions  []string              `gorm:"column:precautions;type:jsonb;serializer:json"`
	FAQs         []types.FAQ           `gorm:"column:faqs;type:jsonb;serializer:json"`
	Rating       float64               `gorm:"column:rating;not null"`
	Duration     string                `gorm:"column:duration;not null"`
	Tag          string                `gorm:"column:tag"`
	CreatedAt    time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps status derived from the stock counters on every write.
func (p *Product) BeforeSave(*gorm.DB) error {
	p.Status = enums.DeriveProductStatus(p.Stock, p.MaxStock)
	return nil
}
