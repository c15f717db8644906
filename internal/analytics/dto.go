package analytics

import "github.com/shopspring/decimal"

// ProductStats summarises catalog stock health.
type ProductStats struct {
	TotalProducts   int64 `json:"totalProducts"`
	LowStockCount   int64 `json:"lowStockCount"`
	OutOfStockCount int64 `json:"outOfStockCount"`
	CategoriesCount int64 `json:"categoriesCount"`
}

// StaffDashboard is the per-staff counter set shown on the staff app home screen.
type StaffDashboard struct {
	TodayAppointments int64           `json:"todayAppointments"`
	Completed         int64           `json:"completed"`
	Pending           int64           `json:"pending"`
	TotalEarnings     decimal.Decimal `json:"totalEarnings"`
	Rating            float64         `json:"rating"`
}
