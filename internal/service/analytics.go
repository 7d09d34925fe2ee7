package service

import (
	"context"
	"time"

	"github.com/mbracken/njord/internal/domain"
)

// Dashboard is the admin overview aggregate.
type Dashboard struct {
	TotalOrders       int              `json:"totalOrders"`
	TotalProducts     int              `json:"totalProducts"`
	TotalUsers        int              `json:"totalUsers"`
	TotalRevenueCents int64            `json:"totalRevenue"`
	RecentOrders      []domain.Order   `json:"recentOrders"`
	TopProducts       []domain.Product `json:"topProducts"`
}

// StatusSales is revenue and order count grouped by order status.
type StatusSales struct {
	Status     domain.OrderStatus `json:"status"`
	Count      int                `json:"count"`
	TotalCents int64              `json:"total"`
}

// SalesReport summarizes orders over a date range.
type SalesReport struct {
	TotalSalesCents int64         `json:"totalSales"`
	OrderCount      int           `json:"orderCount"`
	ByStatus        []StatusSales `json:"salesByStatus"`
}

// AnalyticsStore is the aggregation surface backing the admin dashboards.
// The heavy lifting happens in SQL; the service only shapes results.
type AnalyticsStore interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	SalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error)
}

// AnalyticsService exposes admin reporting.
type AnalyticsService struct {
	store AnalyticsStore
}

// NewAnalyticsService creates a new AnalyticsService instance.
func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Dashboard returns the admin overview: totals, revenue, the five newest
// orders and the five most-reviewed products.
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	return s.store.Dashboard(ctx)
}

// SalesReport summarizes orders between from and to, inclusive.
func (s *AnalyticsService) SalesReport(ctx context.Context, from, to time.Time) (*SalesReport, error) {
	if to.Before(from) {
		return nil, domain.Invalid("analytics.sales", "end date is before start date")
	}
	return s.store.SalesReport(ctx, from, to)
}
