package domain

import "time"

// Product — товар каталога (оправы, линзы, аксессуары).
// Каталогом владеет внешний сервис: здесь только чтение цены и доступности.
type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Brand      string    `json:"brand"`
	PriceCents int64     `json:"price_cents"`
	InStock    bool      `json:"in_stock"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
