package domain

import (
	"errors"
	"fmt"
)

// ErrOrderCreation — обёртка над любой неожиданной ошибкой персистентности
// при создании заказа. Причина остаётся внутри (%w), наружу уходит общий текст.
var ErrOrderCreation = errors.New("order creation failed")

// ErrInvalidTransition — недопустимый переход статуса заказа.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrInvalidStatusEvent — событие статуса не прошло разбор/валидацию;
// консьюмер такие пропускает (коммитит), а не ретраит.
var ErrInvalidStatusEvent = errors.New("invalid status event")

// ItemUnavailableError — бизнес-отказ: товар не найден или недоступен.
// Несёт ID товара, чтобы клиент получил конкретное сообщение.
type ItemUnavailableError struct {
	ProductID string
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available", e.ProductID)
}
