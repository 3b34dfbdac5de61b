package ports

import (
	"context"

	"github.com/visioncart/orders/internal/domain"
)

// EventPublisher — публикация доменных событий заказа.
// Списанием остатков владеет внешний inventory-сервис: заказ только
// сообщает о себе событием, склад он не трогает.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *domain.Order) error
	Close() error
}
