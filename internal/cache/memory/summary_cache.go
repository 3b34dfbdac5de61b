package memory

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports"
	"github.com/visioncart/orders/pkg/metrics"
)

const dashboardCacheLabel = "dashboard"

// Проверка, что SummaryCacheTTL удовлетворяет интерфейсу SummaryCache.
var _ ports.SummaryCache = (*SummaryCacheTTL)(nil)

type summaryEntry struct {
	key       string
	summary   *domain.SalesSummary
	fetchedAt time.Time
}

// SummaryCacheTTL — кэш сводок дашборда по ключу (ресурс, период).
// TTL фиксированный; ёмкость ограничена LRU-вытеснением, чтобы кэш
// не рос без предела на редких ключах. Срок жизни при Get не продлевается:
// свежесть считается от момента загрузки.
type SummaryCacheTTL struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[string]*list.Element

	mu sync.Mutex
}

// NewSummaryCacheTTL — конструктор; capacity <= 0 поднимается до 1.
func NewSummaryCacheTTL(capacity int, ttl time.Duration) *SummaryCacheTTL {
	if capacity <= 0 {
		capacity = 1
	}
	return &SummaryCacheTTL{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

func cacheKey(resource string, period domain.Period) string {
	return resource + ":" + string(period)
}

// Get — сводка по ключу; (summary, true), пока возраст записи меньше TTL.
func (c *SummaryCacheTTL) Get(_ context.Context, resource string, period domain.Period) (*domain.SalesSummary, bool) {
	now := time.Now()
	key := cacheKey(resource, period)

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		metrics.CacheOps.WithLabelValues(dashboardCacheLabel, "miss").Inc()
		return nil, false
	}
	ent := elem.Value.(*summaryEntry)
	if c.ttl > 0 && now.Sub(ent.fetchedAt) >= c.ttl {
		metrics.CacheOps.WithLabelValues(dashboardCacheLabel, "expired").Inc()
		delete(c.index, ent.key)
		c.ll.Remove(elem)
		metrics.CacheSize.WithLabelValues(dashboardCacheLabel).Set(float64(len(c.index)))
		return nil, false
	}
	c.ll.MoveToFront(elem)

	metrics.CacheOps.WithLabelValues(dashboardCacheLabel, "hit").Inc()
	return cloneSummary(ent.summary), true
}

// Set — сохранить сводку со свежей отметкой времени.
func (c *SummaryCacheTTL) Set(_ context.Context, resource string, period domain.Period, summary *domain.SalesSummary) error {
	if summary == nil {
		return nil
	}
	key := cacheKey(resource, period)
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[key]; ok {
		ent := elem.Value.(*summaryEntry)
		ent.summary = cloneSummary(summary)
		ent.fetchedAt = now
		c.ll.MoveToFront(elem)
		return nil
	}

	elem := c.ll.PushFront(&summaryEntry{
		key:       key,
		summary:   cloneSummary(summary),
		fetchedAt: now,
	})
	c.index[key] = elem

	if c.ll.Len() > c.capacity {
		if back := c.ll.Back(); back != nil {
			ent := back.Value.(*summaryEntry)
			delete(c.index, ent.key)
			c.ll.Remove(back)
			metrics.CacheOps.WithLabelValues(dashboardCacheLabel, "evicted").Inc()
		}
	}
	metrics.CacheSize.WithLabelValues(dashboardCacheLabel).Set(float64(len(c.index)))
	return nil
}

// cloneSummary — копия сводки вместе со слайсами.
func cloneSummary(s *domain.SalesSummary) *domain.SalesSummary {
	if s == nil {
		return nil
	}
	cloned := *s
	if s.Series != nil {
		cloned.Series = append([]domain.ChartPoint(nil), s.Series...)
	}
	if s.TopProducts != nil {
		cloned.TopProducts = append([]domain.TopProduct(nil), s.TopProducts...)
	}
	return &cloned
}
