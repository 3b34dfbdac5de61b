package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports"
	"github.com/visioncart/orders/pkg/metrics"
	"github.com/visioncart/orders/pkg/retry"
)

// Ключ ресурса в кэше сводок; период дополняет его до составного ключа.
const summaryResource = "sales_summary"

var _ ports.DashboardService = (*DashboardService)(nil)

// DashboardService — сводка продаж для дашборда.
// Порядок: кэш (TTL) → источник через политику повторов → синтетический
// фолбэк той же формы. Ошибки источника наружу не выходят: дашборд
// деградирует до синтетики, а не до пустого экрана. По значению отличить
// фолбэк от реальных данных нельзя — фолбэки видны в метриках и логах.
type DashboardService struct {
	source       ports.SummarySource
	cache        ports.SummaryCache
	log          ports.Logger
	policy       retry.Policy
	fetchTimeout time.Duration // потолок одной попытки; 0 — без таймаута
}

// NewDashboardService — DI-конструктор.
func NewDashboardService(
	source ports.SummarySource,
	cache ports.SummaryCache,
	log ports.Logger,
	policy retry.Policy,
	fetchTimeout time.Duration,
) *DashboardService {
	return &DashboardService{
		source:       source,
		cache:        cache,
		log:          log,
		policy:       policy,
		fetchTimeout: fetchTimeout,
	}
}

// Summary — сводка за период. При попадании в кэш источник не вызывается.
func (s *DashboardService) Summary(ctx context.Context, period domain.Period) *domain.SalesSummary {
	if cached, found := s.cache.Get(ctx, summaryResource, period); found {
		metrics.DashboardFetches.WithLabelValues("hit").Inc()
		return cached
	}

	var summary *domain.SalesSummary
	err := s.policy.Do(ctx, func(attemptCtx context.Context) error {
		fetchCtx := attemptCtx
		if s.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(attemptCtx, s.fetchTimeout)
			defer cancel()
		}
		fetched, fetchErr := s.source.FetchSummary(fetchCtx, period)
		if fetchErr != nil {
			if ctx.Err() != nil {
				// отменил сам вызывающий — ретраи бессмысленны
				return ctx.Err()
			}
			if errors.Is(fetchErr, context.DeadlineExceeded) {
				// таймаут одной попытки — ретраябельная ошибка, поэтому
				// не даём ей совпасть с DeadlineExceeded в предикате
				return fmt.Errorf("summary source timeout after %s", s.fetchTimeout)
			}
			return fetchErr
		}
		summary = fetched
		return nil
	})
	if err != nil {
		// Источник недоступен: подменяем синтетикой, кэшируем под тем же
		// ключом (следующие запросы в окне TTL не будут долбить источник).
		metrics.DashboardFetches.WithLabelValues("fallback").Inc()
		s.log.Warnf(ctx, "summary fetch failed period=%s err=%v (serving fallback)", period, err)
		summary = syntheticSummary(period, time.Now().UTC())
	} else {
		metrics.DashboardFetches.WithLabelValues("refresh").Inc()
	}

	if setErr := s.cache.Set(ctx, summaryResource, period, summary); setErr != nil {
		s.log.Warnf(ctx, "summary cache.Set failed period=%s err=%v", period, setErr)
	}
	return summary
}
