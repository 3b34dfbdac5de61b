package rest

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/visioncart/orders/internal/ports"
	"github.com/visioncart/orders/pkg/httpx"
)

// Handler — HTTP-хендлеры поверх прикладных сервисов.
type Handler struct {
	orders    ports.OrderService
	dashboard ports.DashboardService
	products  ports.ProductRepository
	log       ports.Logger
	timeout   time.Duration // таймаут на обработку одного запроса; 0 — без таймаута
}

// NewHandler — DI-конструктор.
func NewHandler(
	orders ports.OrderService,
	dashboard ports.DashboardService,
	products ports.ProductRepository,
	log ports.Logger,
	timeout time.Duration,
) *Handler {
	return &Handler{
		orders:    orders,
		dashboard: dashboard,
		products:  products,
		log:       log,
		timeout:   timeout,
	}
}

// NewRouter — сборка роутера: middleware, служебные и API-маршруты.
// otelServiceName — пустая строка отключает otelgin.
func NewRouter(h *Handler, staticDir, otelServiceName string) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	if otelServiceName != "" {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(httpx.RequestIDMiddleware())
	r.Use(httpx.RequestLogger(h.log))

	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/orders", h.createOrder)
		api.GET("/orders/:id", h.getOrderByID)
		api.PATCH("/orders/:id/status", h.updateOrderStatus)
		api.GET("/users/:id/orders", h.listOrdersByUser)
		api.GET("/products", h.listProducts)
		api.GET("/dashboard/summary", h.dashboardSummary)
	}

	// Собранный фронтенд админки (если задан каталог).
	if staticDir != "" {
		r.Static("/static", staticDir)
		r.StaticFile("/", filepath.Join(staticDir, "index.html"))
	}

	return r
}

// requestCtx — контекст запроса с таймаутом хендлера (если задан).
func (h *Handler) requestCtx(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request.Context()
	if h.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, h.timeout)
}
