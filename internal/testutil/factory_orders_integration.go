//go:build integration

package testutil

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visioncart/orders/internal/domain"
)

func randHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func UniqSuffix() string { return randHex(6) }

// MakeProduct — валидный товар каталога с уникальным ID.
func MakeProduct(opts ...func(*domain.Product)) domain.Product {
	p := domain.Product{
		ID:         "prod-" + UniqSuffix(),
		Name:       "Aviator Classic",
		Brand:      "VisionCart",
		PriceCents: 12900,
		InStock:    true,
	}
	for _, fn := range opts {
		fn(&p)
	}
	return p
}

func WithPriceCents(cents int64) func(*domain.Product) {
	return func(p *domain.Product) { p.PriceCents = cents }
}

func OutOfStock() func(*domain.Product) {
	return func(p *domain.Product) { p.InStock = false }
}

// SeedProduct — прямая вставка товара в каталог (минуя приложение:
// каталогом владеет внешний сервис, у репозитория нет записи).
func SeedProduct(ctx context.Context, pool *pgxpool.Pool, p domain.Product) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO products (id, name, brand, price_cents, in_stock)
		VALUES ($1, $2, $3, $4, $5)
	`, p.ID, p.Name, p.Brand, p.PriceCents, p.InStock)
	if err != nil {
		return fmt.Errorf("seed product %s: %w", p.ID, err)
	}
	return nil
}

// MakeOrderRequest — валидный запрос на создание заказа.
func MakeOrderRequest(userID string, items ...domain.ItemInput) *domain.CreateOrderRequest {
	if userID == "" {
		userID = "user-" + UniqSuffix()
	}
	return &domain.CreateOrderRequest{
		UserID:          userID,
		ShippingAddress: "1 Main St, Metropolis",
		PaymentMethod:   "credit_card",
		Items:           items,
	}
}
