package ports

import (
	"context"

	"github.com/visioncart/orders/internal/domain"
)

// ProductRepository — чтение каталога товаров. Мутации каталога —
// зона ответственности внешнего сервиса, здесь их нет.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
}
