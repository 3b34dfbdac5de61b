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

const ordersCacheLabel = "orders"

// Проверка, что OrderCacheLRU удовлетворяет интерфейсу OrderCache.
var _ ports.OrderCache = (*OrderCacheLRU)(nil)

type orderEntry struct {
	id        string
	order     *domain.Order
	expiresAt time.Time
}

// OrderCacheLRU — LRU-кэш заказов с TTL. Ограничен по ёмкости,
// отдаёт и принимает копии, чтобы внешние изменения не трогали кэш.
type OrderCacheLRU struct {
	capacity int
	ttl      time.Duration

	ll    *list.List
	index map[string]*list.Element

	mu sync.Mutex
}

// NewOrderCacheLRU — конструктор; capacity <= 0 поднимается до 1.
func NewOrderCacheLRU(capacity int, ttl time.Duration) *OrderCacheLRU {
	if capacity <= 0 {
		capacity = 1
	}
	return &OrderCacheLRU{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		index:    make(map[string]*list.Element),
	}
}

// Get — заказ по ID; (order, true) при попадании, (nil, false) при промахе/истечении.
func (c *OrderCacheLRU) Get(_ context.Context, orderID string) (*domain.Order, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[orderID]
	if !ok {
		metrics.CacheOps.WithLabelValues(ordersCacheLabel, "miss").Inc()
		return nil, false
	}
	ent := elem.Value.(*orderEntry)
	if c.isExpired(ent.expiresAt, now) {
		metrics.CacheOps.WithLabelValues(ordersCacheLabel, "expired").Inc()
		c.removeElement(elem)
		metrics.CacheSize.WithLabelValues(ordersCacheLabel).Set(float64(len(c.index)))
		return nil, false
	}
	c.ll.MoveToFront(elem)

	if c.ttl > 0 {
		ent.expiresAt = now.Add(c.ttl)
	}

	metrics.CacheOps.WithLabelValues(ordersCacheLabel, "hit").Inc()
	return cloneOrder(ent.order), true
}

// Set — сохранить/обновить заказ в кэше.
func (c *OrderCacheLRU) Set(_ context.Context, order *domain.Order) error {
	if order == nil || order.ID == "" {
		return nil
	}
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.index[order.ID]; ok {
		ent := elem.Value.(*orderEntry)
		ent.order = cloneOrder(order)
		ent.expiresAt = c.expiryFrom(now)
		c.ll.MoveToFront(elem)
		return nil
	}

	c.pruneExpiredFromBack(now)

	elem := c.ll.PushFront(&orderEntry{
		id:        order.ID,
		order:     cloneOrder(order),
		expiresAt: c.expiryFrom(now),
	})
	c.index[order.ID] = elem
	metrics.CacheSize.WithLabelValues(ordersCacheLabel).Set(float64(len(c.index)))

	if c.ll.Len() > c.capacity {
		c.evictLRU()
	}
	return nil
}

// WarmUp — массовая загрузка кэша; уважает отмену контекста.
func (c *OrderCacheLRU) WarmUp(ctx context.Context, orders []*domain.Order) error {
	for _, order := range orders {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.Set(ctx, order); err != nil {
			return err
		}
	}
	return nil
}

// ------вспомогательные функции------

// evictLRU — удаляет наименее используемый элемент.
func (c *OrderCacheLRU) evictLRU() {
	if back := c.ll.Back(); back != nil {
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues(ordersCacheLabel, "evicted").Inc()
		metrics.CacheSize.WithLabelValues(ordersCacheLabel).Set(float64(len(c.index)))
	}
}

// removeElement — удаляет элемент из списка и индекса.
func (c *OrderCacheLRU) removeElement(elem *list.Element) {
	ent := elem.Value.(*orderEntry)
	delete(c.index, ent.id)
	c.ll.Remove(elem)
}

// isExpired — проверяет истечение TTL.
func (c *OrderCacheLRU) isExpired(expiresAt, now time.Time) bool {
	if c.ttl <= 0 {
		return false
	}
	return now.After(expiresAt)
}

// expiryFrom — момент истечения для текущего времени.
func (c *OrderCacheLRU) expiryFrom(now time.Time) time.Time {
	if c.ttl <= 0 {
		return time.Time{}
	}
	return now.Add(c.ttl)
}

// pruneExpiredFromBack — удаляет элементы с истекшим TTL из хвоста до первого актуального.
func (c *OrderCacheLRU) pruneExpiredFromBack(now time.Time) {
	if c.ttl <= 0 {
		return
	}
	for {
		back := c.ll.Back()
		if back == nil {
			return
		}
		ent := back.Value.(*orderEntry)
		if !now.After(ent.expiresAt) {
			return
		}
		c.removeElement(back)
		metrics.CacheOps.WithLabelValues(ordersCacheLabel, "expired").Inc()
		metrics.CacheSize.WithLabelValues(ordersCacheLabel).Set(float64(len(c.index)))
	}
}

// cloneOrder — копия заказа, чтобы внешние изменения
// не отражались на данных внутри кэша.
func cloneOrder(order *domain.Order) *domain.Order {
	if order == nil {
		return nil
	}
	clonedOrder := *order
	if order.Items != nil {
		clonedOrder.Items = append([]domain.OrderItem(nil), order.Items...)
	}
	return &clonedOrder
}
