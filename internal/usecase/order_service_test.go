package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports/mocks"
	"github.com/visioncart/orders/internal/usecase"
	"github.com/visioncart/orders/pkg/validate"
)

const orderID = "order-1"

type noopLogger struct{}

func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

func validRequest() *domain.CreateOrderRequest {
	return &domain.CreateOrderRequest{
		UserID:          "user-1",
		ShippingAddress: "1 Main St",
		PaymentMethod:   "credit_card",
		Items:           []domain.ItemInput{{ProductID: "P1", Quantity: 2}},
	}
}

func TestCreateOrder_OK_CachesAndPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)
	events := mocks.NewMockEventPublisher(ctrl)

	req := validRequest()
	// Сумма посчитана по серверной цене (1000 центов за штуку), не клиентской.
	created := &domain.Order{
		ID: orderID, UserID: "user-1", TotalCents: 2000, Status: domain.StatusPending,
		Items: []domain.OrderItem{{OrderID: orderID, ProductID: "P1", Quantity: 2, PriceCents: 1000}},
	}

	gomock.InOrder(
		validator.EXPECT().ValidateCreate(gomock.Any(), req).Return(nil),
		repo.EXPECT().Create(gomock.Any(), req).Return(created, nil),
		cache.EXPECT().Set(gomock.Any(), created).Return(nil),
		events.EXPECT().PublishOrderCreated(gomock.Any(), created).Return(nil),
	)

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, events)

	got, err := svc.CreateOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if got.TotalCents != 2000 || got.Status != domain.StatusPending {
		t.Fatalf("unexpected order: %+v", got)
	}
}

// Ошибки кэша и продьюсера не должны ломать успешное создание.
func TestCreateOrder_BestEffortSideEffects(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)
	events := mocks.NewMockEventPublisher(ctrl)

	req := validRequest()
	created := &domain.Order{ID: orderID, Status: domain.StatusPending}

	validator.EXPECT().ValidateCreate(gomock.Any(), req).Return(nil)
	repo.EXPECT().Create(gomock.Any(), req).Return(created, nil)
	cache.EXPECT().Set(gomock.Any(), created).Return(errors.New("cache full"))
	events.EXPECT().PublishOrderCreated(gomock.Any(), created).Return(errors.New("broker down"))

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, events)

	if _, err := svc.CreateOrder(context.Background(), req); err != nil {
		t.Fatalf("side-effect failures must not fail creation: %v", err)
	}
}

func TestCreateOrder_ValidationError_NoWrites(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	req := &domain.CreateOrderRequest{}
	wantErr := fmt.Errorf("%w: items are required", validate.ErrInvalidRequest)
	validator.EXPECT().ValidateCreate(gomock.Any(), req).Return(wantErr)
	// repo.Create не ожидаем: до записи дело дойти не должно.

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, validate.ErrInvalidRequest) {
		t.Fatalf("want ErrInvalidRequest, got %v", err)
	}
}

// Бизнес-отказ (товар недоступен) уходит наверх как есть, с ID товара.
func TestCreateOrder_ItemUnavailable_Passthrough(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	req := validRequest()
	validator.EXPECT().ValidateCreate(gomock.Any(), req).Return(nil)
	repo.EXPECT().Create(gomock.Any(), req).Return(nil, &domain.ItemUnavailableError{ProductID: "P1"})

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	_, err := svc.CreateOrder(context.Background(), req)
	var unavailable *domain.ItemUnavailableError
	if !errors.As(err, &unavailable) || unavailable.ProductID != "P1" {
		t.Fatalf("want ItemUnavailableError for P1, got %v", err)
	}
	if errors.Is(err, domain.ErrOrderCreation) {
		t.Fatalf("business rejection must not be wrapped as ErrOrderCreation")
	}
}

// Неожиданная ошибка персистентности заворачивается в общий ErrOrderCreation.
func TestCreateOrder_PersistenceError_Wrapped(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	req := validRequest()
	validator.EXPECT().ValidateCreate(gomock.Any(), req).Return(nil)
	repo.EXPECT().Create(gomock.Any(), req).Return(nil, errors.New("pq: deadlock detected"))

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	_, err := svc.CreateOrder(context.Background(), req)
	if !errors.Is(err, domain.ErrOrderCreation) {
		t.Fatalf("want ErrOrderCreation wrap, got %v", err)
	}
}

func TestGetOrder_CacheHit(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	o := &domain.Order{ID: orderID}
	cache.EXPECT().Get(gomock.Any(), orderID).Return(o, true)

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	got, err := svc.GetOrder(context.Background(), orderID)
	if err != nil || got == nil || got.ID != orderID {
		t.Fatalf("expected hit, got err=%v, order=%+v", err, got)
	}
}

func TestGetOrder_CacheMiss_FetchAndCache(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	o := &domain.Order{ID: orderID}

	gomock.InOrder(
		cache.EXPECT().Get(gomock.Any(), orderID).Return(nil, false),
		repo.EXPECT().GetByID(gomock.Any(), orderID).Return(o, nil),
		cache.EXPECT().Set(gomock.Any(), o).Return(nil),
	)

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	got, err := svc.GetOrder(context.Background(), orderID)
	if err != nil || got == nil || got.ID != orderID {
		t.Fatalf("expected fetch, got err=%v, order=%+v", err, got)
	}
}

// Отсутствующий заказ: (nil, nil), кэш не трогаем.
func TestGetOrder_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	cache.EXPECT().Get(gomock.Any(), orderID).Return(nil, false)
	repo.EXPECT().GetByID(gomock.Any(), orderID).Return(nil, nil)

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	got, err := svc.GetOrder(context.Background(), orderID)
	if err != nil || got != nil {
		t.Fatalf("want (nil, nil), got order=%+v err=%v", got, err)
	}
}

func TestUpdateStatus_ValidTransition(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	current := &domain.Order{ID: orderID, Status: domain.StatusPending}
	updated := &domain.Order{ID: orderID, Status: domain.StatusProcessing}

	gomock.InOrder(
		repo.EXPECT().GetByID(gomock.Any(), orderID).Return(current, nil),
		repo.EXPECT().UpdateStatus(gomock.Any(), orderID, domain.StatusProcessing).Return(updated, nil),
		cache.EXPECT().Set(gomock.Any(), updated).Return(nil),
	)

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	got, err := svc.UpdateStatus(context.Background(), orderID, domain.StatusProcessing)
	if err != nil || got == nil || got.Status != domain.StatusProcessing {
		t.Fatalf("unexpected result: order=%+v err=%v", got, err)
	}
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	// delivered — терминальный статус, откат в pending запрещён.
	current := &domain.Order{ID: orderID, Status: domain.StatusDelivered}
	repo.EXPECT().GetByID(gomock.Any(), orderID).Return(current, nil)

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	_, err := svc.UpdateStatus(context.Background(), orderID, domain.StatusPending)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("want ErrInvalidTransition, got %v", err)
	}
}

func TestApplyStatusEvent_OK(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	current := &domain.Order{ID: orderID, Status: domain.StatusProcessing}
	updated := &domain.Order{ID: orderID, Status: domain.StatusShipped}

	gomock.InOrder(
		repo.EXPECT().GetByID(gomock.Any(), orderID).Return(current, nil),
		repo.EXPECT().UpdateStatus(gomock.Any(), orderID, domain.StatusShipped).Return(updated, nil),
		cache.EXPECT().Set(gomock.Any(), updated).Return(nil),
	)

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	raw, _ := json.Marshal(map[string]string{"order_id": orderID, "status": "shipped"})
	if err := svc.ApplyStatusEvent(context.Background(), raw); err != nil {
		t.Fatalf("ApplyStatusEvent: %v", err)
	}
}

func TestApplyStatusEvent_InvalidPayloads(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "{not json"},
		{"unknown field", `{"order_id":"order-1","status":"shipped","bogus":1}`},
		{"trailing data", `{"order_id":"order-1","status":"shipped"} extra`},
		{"missing order_id", `{"status":"shipped"}`},
		{"unknown status", `{"order_id":"order-1","status":"teleported"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			repo := mocks.NewMockOrderRepository(ctrl)
			cache := mocks.NewMockOrderCache(ctrl)
			validator := mocks.NewMockOrderValidator(ctrl)

			svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

			err := svc.ApplyStatusEvent(context.Background(), []byte(tt.raw))
			if !errors.Is(err, domain.ErrInvalidStatusEvent) {
				t.Fatalf("want ErrInvalidStatusEvent, got %v", err)
			}
		})
	}
}

// Событие про неизвестный заказ — тоже невалидное (ретрай не поможет).
func TestApplyStatusEvent_UnknownOrder(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	repo.EXPECT().GetByID(gomock.Any(), "ghost").Return(nil, nil)

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	err := svc.ApplyStatusEvent(context.Background(), []byte(`{"order_id":"ghost","status":"shipped"}`))
	if !errors.Is(err, domain.ErrInvalidStatusEvent) || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("want ErrInvalidStatusEvent naming the order, got %v", err)
	}
}

// Временная ошибка БД при применении события НЕ маскируется под невалидную.
func TestApplyStatusEvent_TemporaryDBError(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	repo.EXPECT().GetByID(gomock.Any(), orderID).Return(nil, errors.New("db down"))

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	err := svc.ApplyStatusEvent(context.Background(), []byte(`{"order_id":"order-1","status":"shipped"}`))
	if err == nil || errors.Is(err, domain.ErrInvalidStatusEvent) {
		t.Fatalf("temporary error must stay retryable, got %v", err)
	}
}

func TestWarmUpCache(t *testing.T) {
	ctrl := gomock.NewController(t)

	repo := mocks.NewMockOrderRepository(ctrl)
	cache := mocks.NewMockOrderCache(ctrl)
	validator := mocks.NewMockOrderValidator(ctrl)

	list := []*domain.Order{{ID: "a"}, {ID: "b"}}
	gomock.InOrder(
		repo.EXPECT().LastN(gomock.Any(), 2).Return(list, nil),
		cache.EXPECT().WarmUp(gomock.Any(), list).Return(nil),
	)

	svc := usecase.NewOrderService(repo, cache, noopLogger{}, validator, nil)

	if err := svc.WarmUpCache(context.Background(), 2); err != nil {
		t.Fatalf("WarmUpCache: %v", err)
	}

	// n <= 0 — no-op без обращений к репозиторию
	if err := svc.WarmUpCache(context.Background(), 0); err != nil {
		t.Fatalf("WarmUpCache(0): %v", err)
	}
}
