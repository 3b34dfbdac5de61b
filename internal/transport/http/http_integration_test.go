//go:build integration

package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachemem "github.com/visioncart/orders/internal/cache/memory"
	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports"
	pgrepo "github.com/visioncart/orders/internal/repo/postgres"
	"github.com/visioncart/orders/internal/testutil"
	rest "github.com/visioncart/orders/internal/transport/http"
	"github.com/visioncart/orders/internal/usecase"
	"github.com/visioncart/orders/pkg/logger"
	"github.com/visioncart/orders/pkg/retry"
	"github.com/visioncart/orders/pkg/validate"
)

// Полный стек поверх контейнерного Postgres: репозитории, сервисы, роутер.
func startServer(t *testing.T, ctx context.Context) (*httptest.Server, *testutil.PGContainer) {
	t.Helper()

	pg, stop, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stop(context.Background()) })
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cleanup() })

	repo := pgrepo.NewOrderRepository(pg.Pool)
	products := pgrepo.NewProductRepository(pg.Pool)
	stats := pgrepo.NewStatsRepository(pg.Pool)

	orders := usecase.NewOrderService(repo, cachemem.NewOrderCacheLRU(100, time.Minute), logg, validate.NewOrderValidator(), nil)
	dashboard := usecase.NewDashboardService(stats, cachemem.NewSummaryCacheTTL(16, time.Minute), logg,
		retry.NewPolicy(2, 50*time.Millisecond, 200*time.Millisecond), 2*time.Second)

	h := rest.NewHandler(orders, dashboard, products, logg, 2*time.Second)
	r := rest.NewRouter(h, "", "")
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, pg
}

func postJSON(t *testing.T, url, body string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

// 1) POST /api/orders → 201; сумма по серверным ценам; GET возвращает то же.
func TestHTTP_CreateAndGetOrder_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	ts, pg := startServer(t, ctx)

	frame := testutil.MakeProduct(testutil.WithPriceCents(12900))
	require.NoError(t, testutil.SeedProduct(ctx, pg.Pool, frame))

	body := fmt.Sprintf(`{"shippingAddress":"1 Main St","paymentMethod":"credit_card","items":[{"productId":%q,"quantity":2}]}`, frame.ID)
	resp := postJSON(t, ts.URL+"/api/orders", body, map[string]string{"X-User-ID": "user-e2e"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Success bool `json:"success"`
		Order   struct {
			ID          string  `json:"id"`
			UserID      string  `json:"userId"`
			TotalAmount float64 `json:"totalAmount"`
			Status      string  `json:"status"`
		} `json:"order"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.True(t, created.Success)
	require.Equal(t, "user-e2e", created.Order.UserID)
	require.Equal(t, 258.00, created.Order.TotalAmount) // 2 x 129.00
	require.Equal(t, "pending", created.Order.Status)

	respGet, err := http.Get(ts.URL + "/api/orders/" + created.Order.ID)
	require.NoError(t, err)
	defer respGet.Body.Close()
	require.Equal(t, http.StatusOK, respGet.StatusCode)

	var got struct {
		Order struct {
			ID          string  `json:"id"`
			TotalAmount float64 `json:"totalAmount"`
		} `json:"order"`
	}
	require.NoError(t, json.NewDecoder(respGet.Body).Decode(&got))
	require.Equal(t, created.Order.ID, got.Order.ID)
	require.Equal(t, created.Order.TotalAmount, got.Order.TotalAmount)
}

// 2) Недоступный товар → 400 с конкретным ID; в БД ничего не остаётся.
func TestHTTP_CreateOrder_Unavailable_400_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	ts, pg := startServer(t, ctx)

	gone := testutil.MakeProduct(testutil.OutOfStock())
	require.NoError(t, testutil.SeedProduct(ctx, pg.Pool, gone))

	body := fmt.Sprintf(`{"userId":"user-unavail","shippingAddress":"1 Main St","paymentMethod":"credit_card","items":[{"productId":%q,"quantity":1}]}`, gone.ID)
	resp := postJSON(t, ts.URL+"/api/orders", body, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, fmt.Sprintf("Product with ID %s is not available", gone.ID), got["message"])

	var n int
	require.NoError(t, pg.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = 'user-unavail'`).Scan(&n))
	require.Zero(t, n)
}

// 3) GET /api/users/:id/orders — пагинация и фильтрация по пользователю.
func TestHTTP_ListOrdersByUser_Pagination_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	ts, pg := startServer(t, ctx)

	p := testutil.MakeProduct()
	require.NoError(t, testutil.SeedProduct(ctx, pg.Pool, p))

	const user = "user-pages"
	body := fmt.Sprintf(`{"userId":%q,"shippingAddress":"1 Main St","paymentMethod":"credit_card","items":[{"productId":%q,"quantity":1}]}`, user, p.ID)
	for i := 0; i < 3; i++ {
		resp := postJSON(t, ts.URL+"/api/orders", body, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp, err := http.Get(ts.URL + fmt.Sprintf("/api/users/%s/orders?limit=2&offset=1", user))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Orders []struct {
			UserID string `json:"userId"`
		} `json:"orders"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Orders, 2)
	for _, o := range got.Orders {
		require.Equal(t, user, o.UserID)
	}
}

// 4) PATCH /api/orders/:id/status — жизненный цикл и отказ на запрещённом переходе.
func TestHTTP_UpdateStatus_Flow_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	ts, pg := startServer(t, ctx)

	p := testutil.MakeProduct()
	require.NoError(t, testutil.SeedProduct(ctx, pg.Pool, p))

	body := fmt.Sprintf(`{"userId":"user-flow","shippingAddress":"1 Main St","paymentMethod":"credit_card","items":[{"productId":%q,"quantity":1}]}`, p.ID)
	respCreate := postJSON(t, ts.URL+"/api/orders", body, nil)
	require.Equal(t, http.StatusCreated, respCreate.StatusCode)
	var created struct {
		Order struct {
			ID string `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.NewDecoder(respCreate.Body).Decode(&created))
	respCreate.Body.Close()

	patch := func(status string) *http.Response {
		req, err := http.NewRequest(http.MethodPatch,
			ts.URL+"/api/orders/"+created.Order.ID+"/status",
			bytes.NewReader([]byte(fmt.Sprintf(`{"status":%q}`, status))))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	// pending -> processing -> shipped: допустимо
	for _, status := range []string{"processing", "shipped"} {
		resp := patch(status)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// shipped -> cancelled: запрещено (отмена возможна только до отгрузки)
	resp := patch("cancelled")
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Contains(t, got["message"], "invalid status transition")
}

// 5) GET /api/dashboard/summary — реальные агрегаты из БД.
func TestHTTP_DashboardSummary_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	ts, pg := startServer(t, ctx)

	p := testutil.MakeProduct(testutil.WithPriceCents(10000))
	require.NoError(t, testutil.SeedProduct(ctx, pg.Pool, p))

	body := fmt.Sprintf(`{"userId":"user-dash","shippingAddress":"1 Main St","paymentMethod":"credit_card","items":[{"productId":%q,"quantity":3}]}`, p.ID)
	respCreate := postJSON(t, ts.URL+"/api/orders", body, nil)
	require.Equal(t, http.StatusCreated, respCreate.StatusCode)
	respCreate.Body.Close()

	resp, err := http.Get(ts.URL + "/api/dashboard/summary?period=daily")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Summary struct {
			Period      string  `json:"period"`
			TotalSales  float64 `json:"totalSales"`
			OrdersCount int64   `json:"ordersCount"`
			Series      []any   `json:"series"`
			TopProducts []struct {
				ProductID string `json:"productId"`
			} `json:"topProducts"`
		} `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "daily", got.Summary.Period)
	require.Equal(t, 300.00, got.Summary.TotalSales)
	require.EqualValues(t, 1, got.Summary.OrdersCount)
	require.NotEmpty(t, got.Summary.Series)
	require.NotEmpty(t, got.Summary.TopProducts)
	require.Equal(t, p.ID, got.Summary.TopProducts[0].ProductID)
}

// 6) /ping, /metrics и 404 — без БД, на заглушках.
func TestHTTP_Health_Metrics_And_404_TC(t *testing.T) {
	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	h := rest.NewHandler(noOpOrders{}, noOpDashboard{}, noOpProducts{}, logg, 2*time.Second)
	r := rest.NewRouter(h, "", "")
	ts := httptest.NewServer(r)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "pong", string(readAll(t, resp.Body)))

	respM, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer respM.Body.Close()
	require.Equal(t, http.StatusOK, respM.StatusCode)
	require.NotEmpty(t, readAll(t, respM.Body))

	resp404, err := http.Get(ts.URL + "/no/such/route")
	require.NoError(t, err)
	defer resp404.Body.Close()
	require.Equal(t, http.StatusNotFound, resp404.StatusCode)
}

// --- функции-помощники ---

type noOpOrders struct{}

func (noOpOrders) CreateOrder(context.Context, *domain.CreateOrderRequest) (*domain.Order, error) {
	return nil, nil
}
func (noOpOrders) GetOrder(context.Context, string) (*domain.Order, error) { return nil, nil }
func (noOpOrders) OrdersByUser(context.Context, string, int, int) ([]*domain.Order, error) {
	return nil, nil
}
func (noOpOrders) UpdateStatus(context.Context, string, domain.Status) (*domain.Order, error) {
	return nil, nil
}

type noOpDashboard struct{}

func (noOpDashboard) Summary(_ context.Context, period domain.Period) *domain.SalesSummary {
	return &domain.SalesSummary{Period: period, Series: []domain.ChartPoint{}, TopProducts: []domain.TopProduct{}}
}

type noOpProducts struct{}

func (noOpProducts) List(context.Context) ([]domain.Product, error) { return nil, nil }

var _ ports.OrderService = noOpOrders{}
var _ ports.DashboardService = noOpDashboard{}
var _ ports.ProductRepository = noOpProducts{}

func readAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return b
}
