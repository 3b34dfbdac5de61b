package ports

import (
	"context"

	"github.com/visioncart/orders/internal/domain"
)

// SummarySource — источник сводки продаж (агрегаты по БД).
type SummarySource interface {
	FetchSummary(ctx context.Context, period domain.Period) (*domain.SalesSummary, error)
}

// SummaryCache — TTL-кэш сводок по ключу (ресурс, период).
type SummaryCache interface {
	Get(ctx context.Context, resource string, period domain.Period) (*domain.SalesSummary, bool)
	Set(ctx context.Context, resource string, period domain.Period, summary *domain.SalesSummary) error
}

// DashboardService — чтение сводки для дашборда.
// Ошибок не возвращает: при недоступном источнике отдаёт синтетические
// данные той же формы (деградация вместо пустого UI).
type DashboardService interface {
	Summary(ctx context.Context, period domain.Period) *domain.SalesSummary
}
