// Package sequence allocates human-readable, monotonically increasing
// identifiers such as product SKUs and order numbers.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/homeservices-backend/pkg/config"
	"github.com/angelmondragon/homeservices-backend/pkg/redis"
	"gorm.io/gorm"
)

const (
	ProductSKU = "product_sku"
	OrderID    = "order_id"

	SKUPrefix     = "PRD-"
	OrderIDPrefix = "ORD-"
)

// Allocator hands out the next value of a named counter. Implementations must
// be safe for concurrent use across processes.
type Allocator interface {
	Next(ctx context.Context, name string) (int64, error)
	// Seed raises the counter so the next value is greater than floor.
	// It never lowers an existing counter.
	Seed(ctx context.Context, name string, floor int64) error
}

// NewAllocator picks the backend configured by cfg.
func NewAllocator(cfg config.SequenceConfig, counters redis.CounterStore, conn *gorm.DB) (Allocator, error) {
	if cfg.UseDB() {
		return NewDBAllocator(conn)
	}
	return NewRedisAllocator(counters)
}

// FormatSKU renders n as PRD-001. Values above 999 widen naturally.
func FormatSKU(n int64) string {
	return fmt.Sprintf("%s%03d", SKUPrefix, n)
}

// FormatOrderID renders n as ORD-000001.
func FormatOrderID(n int64) string {
	return fmt.Sprintf("%s%06d", OrderIDPrefix, n)
}

// ParseSKU extracts the numeric part of a PRD-### SKU.
func ParseSKU(sku string) (int64, bool) {
	return parseNumbered(sku, SKUPrefix)
}

// ParseOrderID extracts the numeric part of an ORD-###### identifier.
func ParseOrderID(id string) (int64, bool) {
	return parseNumbered(id, OrderIDPrefix)
}

func parseNumbered(value, prefix string) (int64, bool) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, prefix) {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(value, prefix), 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// MaxSKU returns the largest numeric suffix among PRD-### values, ignoring
// anything that does not follow the pattern.
func MaxSKU(skus []string) int64 {
	return maxNumbered(skus, SKUPrefix)
}

// MaxOrderID is MaxSKU for ORD-###### values.
func MaxOrderID(ids []string) int64 {
	return maxNumbered(ids, OrderIDPrefix)
}

func maxNumbered(values []string, prefix string) int64 {
	var max int64
	for _, value := range values {
		if n, ok := parseNumbered(value, prefix); ok && n > max {
			max = n
		}
	}
	return max
}
