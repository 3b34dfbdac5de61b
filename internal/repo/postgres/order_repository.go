package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports"
)

// Проверка, что OrderRepository удовлетворяет интерфейсу OrderRepository.
var _ ports.OrderRepository = (*OrderRepository)(nil)

// OrderRepository — реализация репозитория заказов на Postgres (pgxpool).
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository — конструктор OrderRepository.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository { return &OrderRepository{pool: pool} }

// Create — транзакционное создание заказа.
// Шаги:
//  1. BEGIN (уровень изоляции — дефолтный для движка);
//  2. по каждой позиции последовательно читаем цену и доступность;
//     отсутствующий или недоступный товар обрывает транзакцию —
//     *ItemUnavailableError с ID первой проблемной позиции;
//  3. total += price * quantity по серверной цене; та же цена пишется
//     в order_items (одно чтение на позицию: сумма и снимок цены
//     не могут разойтись из-за конкурентного изменения каталога);
//  4. INSERT orders со статусом pending, затем order_items через COPY;
//  5. COMMIT; при любой ошибке — откат через deferred Rollback.
//
// Соединение возвращается в пул на любом пути выхода.
func (r *OrderRepository) Create(ctx context.Context, req *domain.CreateOrderRequest) (*domain.Order, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, errors.New("request is empty or has no items")
	}
	if req.UserID == "" {
		return nil, errors.New("user_id is required")
	}

	transaction, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := transaction.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          req.UserID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		Status:          domain.StatusPending,
		Items:           make([]domain.OrderItem, 0, len(req.Items)),
	}

	for _, item := range req.Items {
		var (
			priceCents int64
			inStock    bool
		)
		err := transaction.QueryRow(ctx, `
			SELECT price_cents, in_stock FROM products WHERE id = $1
		`, item.ProductID).Scan(&priceCents, &inStock)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.ItemUnavailableError{ProductID: item.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("select product %s: %w", item.ProductID, err)
		}
		if !inStock {
			return nil, &domain.ItemUnavailableError{ProductID: item.ProductID}
		}

		order.TotalCents += priceCents * int64(item.Quantity)
		order.Items = append(order.Items, domain.OrderItem{
			OrderID:    order.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			PriceCents: priceCents,
		})
	}

	now := time.Now().UTC()
	order.CreatedAt = now
	order.UpdatedAt = now

	if _, err = transaction.Exec(ctx, `
		INSERT INTO orders (
			id, user_id, shipping_address, total_cents, payment_method, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		order.ID, order.UserID, order.ShippingAddress, order.TotalCents,
		order.PaymentMethod, order.Status, order.CreatedAt, order.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	if err = copyOrderItems(ctx, transaction, order.Items); err != nil {
		return nil, err
	}

	if err := transaction.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return order, nil
}

// GetByID — заказ с позициями. Если не нашли, возвращает (nil, nil).
func (r *OrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var order domain.Order

	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, shipping_address, total_cents, payment_method, status, created_at, updated_at
		FROM orders WHERE id = $1
	`, orderID).Scan(
		&order.ID, &order.UserID, &order.ShippingAddress, &order.TotalCents,
		&order.PaymentMethod, &order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, quantity, price_cents
		FROM order_items WHERE order_id = $1
		ORDER BY product_id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.OrderID, &item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("order items rows: %w", err)
	}

	return &order, nil
}

// ListByUser — постраничный список заказов пользователя.
// Два запроса на страницу: база заказов + все позиции через ANY(uids),
// склейка в памяти с сохранением порядка базового SELECT.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, shipping_address, total_cents, payment_method, status, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select user orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0, limit)
	byID := make(map[string]*domain.Order, limit)
	ids := make([]string, 0, limit)

	for rows.Next() {
		order := &domain.Order{}
		if err := rows.Scan(
			&order.ID, &order.UserID, &order.ShippingAddress, &order.TotalCents,
			&order.PaymentMethod, &order.Status, &order.CreatedAt, &order.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order base: %w", err)
		}
		orders = append(orders, order)
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("orders rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil // пустая страница
	}

	iRows, err := r.pool.Query(ctx, `
		SELECT order_id, product_id, quantity, price_cents
		FROM order_items
		WHERE order_id = ANY($1::text[])
		ORDER BY order_id, product_id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer iRows.Close()

	for iRows.Next() {
		var item domain.OrderItem
		if err := iRows.Scan(&item.OrderID, &item.ProductID, &item.Quantity, &item.PriceCents); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if order := byID[item.OrderID]; order != nil {
			order.Items = append(order.Items, item)
		}
	}
	if err := iRows.Err(); err != nil {
		return nil, fmt.Errorf("order items rows: %w", err)
	}

	return orders, nil
}

// UpdateStatus — смена статуса. Допустимость перехода проверяет usecase;
// здесь — только UPDATE с RETURNING. (nil, nil), если заказа нет.
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	var order domain.Order
	err := r.pool.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, user_id, shipping_address, total_cents, payment_method, status, created_at, updated_at
	`, orderID, status).Scan(
		&order.ID, &order.UserID, &order.ShippingAddress, &order.TotalCents,
		&order.PaymentMethod, &order.Status, &order.CreatedAt, &order.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return &order, nil
}

// LastN — последние N заказов (для прогрева кэша).
// Подход N+1: берём только ID, затем дочитываем полные заказы.
func (r *OrderRepository) LastN(ctx context.Context, n int) ([]*domain.Order, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("select last ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("last rows: %w", err)
	}

	var result []*domain.Order
	for _, id := range ids {
		order, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if order != nil {
			result = append(result, order)
		}
	}
	return result, nil
}

// copyOrderItems — вставка позиций через COPY (CopyFromRows); быстрее, чем INSERT в цикле.
func copyOrderItems(ctx context.Context, tx pgx.Tx, items []domain.OrderItem) error {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, []any{item.OrderID, item.ProductID, item.Quantity, item.PriceCents})
	}

	_, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{"order_id", "product_id", "quantity", "price_cents"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy order items: %w", err)
	}
	return nil
}
