package domain

import "time"

// Period — период выборки для дашборда.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod — (Period, true) для известного значения, иначе ("", false).
func ParsePeriod(s string) (Period, bool) {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return Period(s), true
	}
	return "", false
}

// ChartPoint — точка графика продаж (подпись + значение).
type ChartPoint struct {
	Label      string `json:"label"`
	SalesCents int64  `json:"sales_cents"`
	Orders     int64  `json:"orders"`
}

// TopProduct — строка списка самых продаваемых товаров.
type TopProduct struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	UnitsSold    int64  `json:"units_sold"`
	RevenueCents int64  `json:"revenue_cents"`
}

// SalesSummary — сводка продаж для дашборда за период.
// Контракт для UI: Series и TopProducts всегда не-nil.
type SalesSummary struct {
	Period          Period       `json:"period"`
	TotalSalesCents int64        `json:"total_sales_cents"`
	OrdersCount     int64        `json:"orders_count"`
	GrowthPct       float64      `json:"growth_pct"`
	Series          []ChartPoint `json:"series"`
	TopProducts     []TopProduct `json:"top_products"`
	GeneratedAt     time.Time    `json:"generated_at"`
}
