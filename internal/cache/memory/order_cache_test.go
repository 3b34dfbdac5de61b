package memory

import (
	"context"
	"testing"
	"time"

	"github.com/visioncart/orders/internal/domain"
)

func newOrder(id string) *domain.Order {
	return &domain.Order{
		ID:    id,
		Items: []domain.OrderItem{{ProductID: "P1", Quantity: 1, PriceCents: 1000}},
	}
}

func TestSetGet_HitMiss(t *testing.T) {
	c := NewOrderCacheLRU(2, 5*time.Minute)
	ctx := context.Background()

	// miss
	if _, ok := c.Get(ctx, "id-1"); ok {
		t.Fatalf("expected miss before Set")
	}

	// hit после Set
	_ = c.Set(ctx, newOrder("id-1"))
	got, ok := c.Get(ctx, "id-1")
	if !ok || got.ID != "id-1" {
		t.Fatalf("expected hit for id-1")
	}
}

func TestTTL_Expiry(t *testing.T) {
	c := NewOrderCacheLRU(2, 100*time.Millisecond)
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("ttl"))
	if _, ok := c.Get(ctx, "ttl"); !ok {
		t.Fatalf("expected hit right after Set")
	}
	time.Sleep(150 * time.Millisecond)
	if _, ok := c.Get(ctx, "ttl"); ok {
		t.Fatalf("expected miss after TTL expires")
	}
}

func TestLRUEviction(t *testing.T) {
	c := NewOrderCacheLRU(2, 0) // 0 = без TTL
	ctx := context.Background()

	_ = c.Set(ctx, newOrder("A"))
	_ = c.Set(ctx, newOrder("B"))
	// A сделать «свежим»
	if _, ok := c.Get(ctx, "A"); !ok {
		t.Fatalf("expected hit for A")
	}
	// Добавляем C — вытеснит B (самый старый)
	_ = c.Set(ctx, newOrder("C"))

	if _, ok := c.Get(ctx, "B"); ok {
		t.Fatalf("expected B to be evicted")
	}
	if _, ok := c.Get(ctx, "A"); !ok || c.ll.Len() != 2 {
		t.Fatalf("expected A & C to stay in cache")
	}
}

func TestCloneImmutability(t *testing.T) {
	c := NewOrderCacheLRU(1, 0)
	ctx := context.Background()
	orig := newOrder("Z")
	_ = c.Set(ctx, orig)

	// меняем то, что вернул Get — не должно влиять на кэш
	o1, _ := c.Get(ctx, "Z")
	o1.Items[0].ProductID = "changed"

	o2, _ := c.Get(ctx, "Z")
	if o2.Items[0].ProductID != "P1" {
		t.Fatalf("cache entry must not be affected by external mutation")
	}

	// меняем исходный заказ после Set — кэш тоже не должен измениться
	orig.Items[0].Quantity = 99
	o3, _ := c.Get(ctx, "Z")
	if o3.Items[0].Quantity != 1 {
		t.Fatalf("cache entry must hold its own copy")
	}
}

func TestWarmUp_RespectsContext(t *testing.T) {
	c := NewOrderCacheLRU(10, 0)

	orders := []*domain.Order{newOrder("w1"), newOrder("w2")}
	if err := c.WarmUp(context.Background(), orders); err != nil {
		t.Fatalf("WarmUp: %v", err)
	}
	if _, ok := c.Get(context.Background(), "w2"); !ok {
		t.Fatalf("expected w2 after warm-up")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.WarmUp(ctx, orders); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
