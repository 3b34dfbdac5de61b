package validate

import (
	"context"
	"errors"
	"fmt"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports"
)

// Проверка, что OrderValidator удовлетворяет интерфейсу OrderValidator.
var _ ports.OrderValidator = (*OrderValidator)(nil)

// ErrInvalidRequest — базовая (sentinel error) ошибка валидации запроса.
var ErrInvalidRequest = errors.New("invalid order request")

// OrderValidator — проверка запроса на создание заказа.
// Возвращает ErrInvalidRequest (с обёрнутой причиной) при любой проблеме.
// Тексты причин уходят клиенту как есть, поэтому называют поля запроса.
type OrderValidator struct{}

// NewOrderValidator — конструктор OrderValidator.
func NewOrderValidator() *OrderValidator { return &OrderValidator{} }

// ValidateCreate — проверяет обязательные поля и позиции заказа.
func (v *OrderValidator) ValidateCreate(_ context.Context, req *domain.CreateOrderRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request body is required", ErrInvalidRequest)
	}
	if req.UserID == "" {
		return fmt.Errorf("%w: user is required", ErrInvalidRequest)
	}
	if req.ShippingAddress == "" {
		return fmt.Errorf("%w: shippingAddress is required", ErrInvalidRequest)
	}
	if req.PaymentMethod == "" {
		return fmt.Errorf("%w: paymentMethod is required", ErrInvalidRequest)
	}
	return v.validateItems(req.Items)
}

// validateItems — список позиций: непустой, id заданы и не повторяются,
// количества > 0. Дубликат productId ловим здесь: позиции хранятся с ключом
// (order_id, product_id), и повтор иначе доедет до БД и вернётся как 500.
func (v *OrderValidator) validateItems(items []domain.ItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: items are required", ErrInvalidRequest)
	}
	seen := make(map[string]int, len(items))
	for i := range items {
		item := &items[i]
		if item.ProductID == "" {
			return fmt.Errorf("%w: items[%d].productId is required", ErrInvalidRequest, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be positive", ErrInvalidRequest, i)
		}
		if first, dup := seen[item.ProductID]; dup {
			return fmt.Errorf("%w: items[%d].productId duplicates items[%d]", ErrInvalidRequest, i, first)
		}
		seen[item.ProductID] = i
	}
	return nil
}
