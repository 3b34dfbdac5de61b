package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports"
	"github.com/visioncart/orders/pkg/metrics"
)

// Проверка, что OrderService удовлетворяет контракту транспорта.
var _ ports.OrderService = (*OrderService)(nil)

// OrderService — прикладная логика работы с заказами (без знаний о транспорте).
type OrderService struct {
	repo      ports.OrderRepository // прямой доступ к хранилищу
	cache     ports.OrderCache      // прямой доступ к кэшу
	log       ports.Logger          // прямой доступ к логгеру
	validator ports.OrderValidator  // прямой доступ к валидатору
	events    ports.EventPublisher  // публикация событий заказа; может быть nil
}

// NewOrderService — DI-конструктор. events допускает nil (без публикации).
func NewOrderService(
	repo ports.OrderRepository,
	cache ports.OrderCache,
	log ports.Logger,
	validator ports.OrderValidator,
	events ports.EventPublisher,
) *OrderService {
	return &OrderService{
		repo:      repo,
		cache:     cache,
		log:       log,
		validator: validator,
		events:    events,
	}
}

// CreateOrder — оформление заказа.
// Шаги:
//  1. валидация запроса (validate.ErrInvalidRequest при проблемах) —
//     до любой записи;
//  2. транзакционное создание в БД: цена/доступность читаются внутри
//     транзакции, сумма считается по серверным ценам;
//  3. бизнес-отказ (*ItemUnavailableError) уходит наверх как есть —
//     клиент получает конкретный товар; прочие ошибки персистентности
//     заворачиваются в ErrOrderCreation без деталей;
//  4. кэш и событие order.created — best effort, на успех не влияют.
//
// Остатки заказ не списывает: этим владеет inventory-сервис,
// подписанный на событие.
func (s *OrderService) CreateOrder(ctx context.Context, req *domain.CreateOrderRequest) (*domain.Order, error) {
	if err := s.validator.ValidateCreate(ctx, req); err != nil {
		metrics.OrdersRejected.WithLabelValues("validation").Inc()
		s.log.Warnf(ctx, "order validation failed user=%s err=%v", safeUserID(req), err)
		return nil, err
	}

	start := time.Now()
	order, err := s.repo.Create(ctx, req)
	if err != nil {
		var unavailable *domain.ItemUnavailableError
		if errors.As(err, &unavailable) {
			metrics.OrdersRejected.WithLabelValues("unavailable").Inc()
			s.log.Warnf(ctx, "order rejected user=%s product=%s", req.UserID, unavailable.ProductID)
			return nil, err
		}
		metrics.OrdersRejected.WithLabelValues("internal").Inc()
		s.log.Errorf(ctx, "repo.Create failed user=%s err=%v", req.UserID, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrOrderCreation, err)
	}
	metrics.OrdersCreated.Inc()
	metrics.OrderCreateDuration.Observe(time.Since(start).Seconds())

	if setErr := s.cache.Set(ctx, order); setErr != nil {
		s.log.Warnf(ctx, "cache.Set failed order=%s err=%v", order.ID, setErr)
	}
	if s.events != nil {
		if pubErr := s.events.PublishOrderCreated(ctx, order); pubErr != nil {
			s.log.Warnf(ctx, "publish order.created failed order=%s err=%v", order.ID, pubErr)
		}
	}

	s.log.Infof(ctx, "order created id=%s user=%s total_cents=%d items=%d took=%s",
		order.ID, order.UserID, order.TotalCents, len(order.Items), time.Since(start))
	return order, nil
}

// GetOrder — получить заказ по ID: сначала из кэша, при промахе — из БД с записью в кэш.
// Возвращает (*Order, nil) или (nil, nil), если записи нет.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	if order, found := s.cache.Get(ctx, orderID); found {
		s.log.Infof(ctx, "cache hit for order=%s", orderID)
		return order, nil
	}
	s.log.Infof(ctx, "cache miss for order=%s", orderID)

	start := time.Now()
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID failed order=%s err=%v", orderID, err)
		return nil, err
	}

	if order != nil {
		if setErr := s.cache.Set(ctx, order); setErr != nil {
			s.log.Warnf(ctx, "cache.Set failed order=%s err=%v", orderID, setErr)
		}
	}

	s.log.Infof(ctx, "db fetch order=%s took=%s", orderID, time.Since(start))
	return order, nil
}

// OrdersByUser — проксирование в репозиторий (пагинация уже валидирована на верхнем уровне).
func (s *OrderService) OrdersByUser(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// UpdateStatus — смена статуса с проверкой перехода.
// (nil, nil) — заказа нет; ErrInvalidTransition — переход недопустим.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		s.log.Errorf(ctx, "repo.GetByID failed order=%s err=%v", orderID, err)
		return nil, err
	}
	if current == nil {
		return nil, nil
	}
	if !domain.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, status)
	}

	updated, err := s.repo.UpdateStatus(ctx, orderID, status)
	if err != nil {
		s.log.Errorf(ctx, "repo.UpdateStatus failed order=%s err=%v", orderID, err)
		return nil, err
	}
	if updated == nil {
		return nil, nil
	}

	if setErr := s.cache.Set(ctx, updated); setErr != nil {
		s.log.Warnf(ctx, "cache.Set failed order=%s err=%v", orderID, setErr)
	}
	s.log.Infof(ctx, "order status updated id=%s %s -> %s", orderID, current.Status, status)
	return updated, nil
}

// statusEvent — событие смены статуса из Kafka.
type statusEvent struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// ApplyStatusEvent — применить событие статуса, пришедшее из Kafka (raw JSON).
// Шаги:
//  1. строгий парсинг JSON (DisallowUnknownFields);
//  2. проверка известности статуса;
//  3. UpdateStatus с проверкой перехода.
//
// Невалидные события (мусорный JSON, неизвестный статус, отсутствующий
// заказ, недопустимый переход) возвращают ErrInvalidStatusEvent —
// консьюмер их коммитит и не ретраит.
func (s *OrderService) ApplyStatusEvent(ctx context.Context, raw []byte) error {
	var event statusEvent
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&event); err != nil {
		s.log.Warnf(ctx, "invalid status event json err=%v", err)
		return fmt.Errorf("%w: invalid json: %v", domain.ErrInvalidStatusEvent, err)
	}
	// Убеждаемся, что после объекта нет лишних данных.
	if err := dec.Decode(new(struct{})); err != io.EOF {
		s.log.Warnf(ctx, "invalid status event: trailing data")
		return fmt.Errorf("%w: trailing data", domain.ErrInvalidStatusEvent)
	}
	if event.OrderID == "" {
		return fmt.Errorf("%w: order_id is required", domain.ErrInvalidStatusEvent)
	}
	status, known := domain.ParseStatus(event.Status)
	if !known {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidStatusEvent, event.Status)
	}

	updated, err := s.UpdateStatus(ctx, event.OrderID, status)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			return fmt.Errorf("%w: %v", domain.ErrInvalidStatusEvent, err)
		}
		return err
	}
	if updated == nil {
		// Заказ неизвестен: ретрай не поможет, событие пропускаем.
		return fmt.Errorf("%w: order %s not found", domain.ErrInvalidStatusEvent, event.OrderID)
	}
	return nil
}

// WarmUpCache — прогрев кэша последними N заказами из БД.
// Если n <= 0, прогрев не выполняется (но это не ошибка).
func (s *OrderService) WarmUpCache(ctx context.Context, n int) error {
	if n <= 0 {
		s.log.Warnf(ctx, "cache warm-up skipped: n <= 0 (n=%d)", n)
		return nil
	}

	start := time.Now()
	list, err := s.repo.LastN(ctx, n)
	if err != nil {
		s.log.Errorf(ctx, "repo.LastN failed n=%d err=%v", n, err)
		return err
	}
	if warmUpErr := s.cache.WarmUp(ctx, list); warmUpErr != nil {
		s.log.Warnf(ctx, "cache.WarmUp failed err=%v", warmUpErr)
	}
	s.log.Infof(ctx, "cache warmed with %d orders in %s", len(list), time.Since(start))
	return nil
}

func safeUserID(req *domain.CreateOrderRequest) string {
	if req == nil {
		return ""
	}
	return req.UserID
}
