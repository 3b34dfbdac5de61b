package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports"
)

var _ ports.SummarySource = (*StatsRepository)(nil)

// StatsRepository — источник сводки продаж для дашборда.
// Агрегаты считаются по orders/order_items; отменённые заказы не входят.
type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// periodWindow — ширина окна и шаг ряда для периода.
func periodWindow(period domain.Period) (window time.Duration, bucket, labelFmt string) {
	switch period {
	case domain.PeriodDaily:
		return 24 * time.Hour, "hour", "HH24:00"
	case domain.PeriodWeekly:
		return 7 * 24 * time.Hour, "day", "Dy"
	case domain.PeriodMonthly:
		return 30 * 24 * time.Hour, "day", "DD Mon"
	default: // yearly
		return 365 * 24 * time.Hour, "month", "Mon"
	}
}

// FetchSummary — сводка за окно периода: суммарные продажи, число заказов,
// рост к предыдущему окну той же ширины, ряд для графика и топ товаров.
func (r *StatsRepository) FetchSummary(ctx context.Context, period domain.Period) (*domain.SalesSummary, error) {
	window, bucket, labelFmt := periodWindow(period)
	now := time.Now().UTC()
	from := now.Add(-window)
	prevFrom := from.Add(-window)

	summary := &domain.SalesSummary{
		Period:      period,
		Series:      []domain.ChartPoint{},
		TopProducts: []domain.TopProduct{},
		GeneratedAt: now,
	}

	// Текущее окно.
	var prevSales int64
	if err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_cents), 0), COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND status <> 'cancelled'
	`, from).Scan(&summary.TotalSalesCents, &summary.OrdersCount); err != nil {
		return nil, fmt.Errorf("select totals: %w", err)
	}

	// Предыдущее окно — для процента роста.
	if err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_cents), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2 AND status <> 'cancelled'
	`, prevFrom, from).Scan(&prevSales); err != nil {
		return nil, fmt.Errorf("select previous totals: %w", err)
	}
	if prevSales > 0 {
		summary.GrowthPct = float64(summary.TotalSalesCents-prevSales) / float64(prevSales) * 100
	}

	// Ряд для графика.
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc($1, created_at), $2) AS label,
			COALESCE(SUM(total_cents), 0), COUNT(*)
		FROM orders
		WHERE created_at >= $3 AND status <> 'cancelled'
		GROUP BY date_trunc($1, created_at)
		ORDER BY date_trunc($1, created_at)
	`, bucket, labelFmt, from)
	if err != nil {
		return nil, fmt.Errorf("select series: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var point domain.ChartPoint
		if err := rows.Scan(&point.Label, &point.SalesCents, &point.Orders); err != nil {
			return nil, fmt.Errorf("scan series point: %w", err)
		}
		summary.Series = append(summary.Series, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("series rows: %w", err)
	}

	// Топ товаров по выручке.
	tRows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, SUM(oi.quantity), SUM(oi.price_cents * oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		JOIN products p ON p.id = oi.product_id
		WHERE o.created_at >= $1 AND o.status <> 'cancelled'
		GROUP BY p.id, p.name
		ORDER BY SUM(oi.price_cents * oi.quantity) DESC
		LIMIT 5
	`, from)
	if err != nil {
		return nil, fmt.Errorf("select top products: %w", err)
	}
	defer tRows.Close()

	for tRows.Next() {
		var top domain.TopProduct
		if err := tRows.Scan(&top.ProductID, &top.Name, &top.UnitsSold, &top.RevenueCents); err != nil {
			return nil, fmt.Errorf("scan top product: %w", err)
		}
		summary.TopProducts = append(summary.TopProducts, top)
	}
	if err := tRows.Err(); err != nil {
		return nil, fmt.Errorf("top products rows: %w", err)
	}

	return summary, nil
}
