package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mbracken/njord/internal/domain"
	"github.com/mbracken/njord/internal/service"
)

// AnalyticsStore runs the reporting aggregations for the admin surface.
// Cancelled orders never count toward revenue.
type AnalyticsStore struct {
	pool *pgxpool.Pool
}

var _ service.AnalyticsStore = (*AnalyticsStore)(nil)

// NewAnalyticsStore creates a new AnalyticsStore instance.
func NewAnalyticsStore(pool *pgxpool.Pool) *AnalyticsStore {
	return &AnalyticsStore{pool: pool}
}

// Dashboard returns the admin overview aggregate.
func (s *AnalyticsStore) Dashboard(ctx context.Context) (*service.Dashboard, error) {
	const op = "postgres.analytics.dashboard"

	var d service.Dashboard
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM orders),
			(SELECT count(*) FROM products WHERE is_active),
			(SELECT count(*) FROM users),
			(SELECT COALESCE(sum(total_cents), 0) FROM orders WHERE status <> $1)`,
		domain.OrderStatusCancelled,
	).Scan(&d.TotalOrders, &d.TotalProducts, &d.TotalUsers, &d.TotalRevenueCents)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to aggregate totals")
	}

	recentRows, err := s.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT 5`)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to query recent orders")
	}
	defer recentRows.Close()
	for recentRows.Next() {
		order, err := scanOrder(recentRows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan recent order")
		}
		d.RecentOrders = append(d.RecentOrders, *order)
	}
	if err := recentRows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to iterate recent orders")
	}

	topRows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE is_active
		ORDER BY rating_count DESC, rating_average DESC
		LIMIT 5`)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to query top products")
	}
	defer topRows.Close()
	for topRows.Next() {
		product, err := scanProduct(topRows)
		if err != nil {
			return nil, domain.Internal(err, op, "failed to scan top product")
		}
		d.TopProducts = append(d.TopProducts, *product)
	}
	if err := topRows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to iterate top products")
	}

	return &d, nil
}

// SalesReport summarizes orders created inside [from, to].
func (s *AnalyticsStore) SalesReport(ctx context.Context, from, to time.Time) (*service.SalesReport, error) {
	const op = "postgres.analytics.sales"

	var report service.SalesReport
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(total_cents), 0), count(*)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2 AND status <> $3`,
		from, to, domain.OrderStatusCancelled,
	).Scan(&report.TotalSalesCents, &report.OrderCount)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to aggregate sales")
	}

	rows, err := s.pool.Query(ctx, `
		SELECT status, count(*), COALESCE(sum(total_cents), 0)
		FROM orders
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY status
		ORDER BY status`, from, to)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to group sales by status")
	}
	defer rows.Close()

	for rows.Next() {
		var entry service.StatusSales
		if err := rows.Scan(&entry.Status, &entry.Count, &entry.TotalCents); err != nil {
			return nil, domain.Internal(err, op, "failed to scan status sales")
		}
		report.ByStatus = append(report.ByStatus, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to iterate status sales")
	}

	return &report, nil
}
