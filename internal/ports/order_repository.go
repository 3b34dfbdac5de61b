package ports

import (
	"context"

	"github.com/visioncart/orders/internal/domain"
)

// OrderRepository — хранилище заказов.
type OrderRepository interface {
	// Create — транзакционное создание заказа: чтение цены/доступности
	// по каждой позиции, подсчёт суммы, вставка orders + order_items.
	// Всё или ничего; при недоступном товаре — *domain.ItemUnavailableError.
	Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.Order, error)

	// GetByID — заказ с позициями; (nil, nil), если записи нет.
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)

	// ListByUser — постраничный список заказов пользователя.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error)

	// UpdateStatus — смена статуса; (nil, nil), если заказа нет.
	UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error)

	// LastN — последние N заказов (для прогрева кэша).
	LastN(ctx context.Context, n int) ([]*domain.Order, error)
}
