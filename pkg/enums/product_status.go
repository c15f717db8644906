package enums

import "fmt"

// ProductStatus is the availability label derived from stock and maxStock.
type ProductStatus string

const (
	ProductStatusActive ProductStatus = "active"
	ProductStatusLow    ProductStatus = "low"
	ProductStatusOut    ProductStatus = "out"
)

// lowStockRatio is the stock/maxStock fraction under which a product is flagged low.
const lowStockRatio = 0.2

var validProductStatuses = []ProductStatus{
	ProductStatusActive,
	ProductStatusLow,
	ProductStatusOut,
}

// String implements fmt.Stringer.
func (s ProductStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	for _, candidate := range validProductStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseProductStatus converts raw input into a ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	for _, candidate := range validProductStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product status %q", value)
}

// DeriveProductStatus computes the status for the given stock counters.
// A non-positive maxStock only ever yields out or active.
func DeriveProductStatus(stock, maxStock int) ProductStatus {
	if stock <= 0 {
		return ProductStatusOut
	}
	if maxStock > 0 && float64(stock)/float64(maxStock) < lowStockRatio {
		return ProductStatusLow
	}
	return ProductStatusActive
}
