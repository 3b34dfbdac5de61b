package ports

import (
	"context"

	"github.com/visioncart/orders/internal/domain"
)

// OrderValidator — проверка запроса на создание заказа до любой записи.
type OrderValidator interface {
	ValidateCreate(ctx context.Context, req *domain.CreateOrderRequest) error
}
