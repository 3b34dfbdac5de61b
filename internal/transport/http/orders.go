package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/pkg/httpx"
	"github.com/visioncart/orders/pkg/validate"
)

// userIDHeader — идентификатор покупателя от API-гейтвея (после аутентификации).
const userIDHeader = "X-User-ID"

// createOrder — POST /api/orders.
// Тело: { shippingAddress, paymentMethod, items: [{productId, quantity}] }.
// Пользователь берётся из заголовка; цены клиент не передаёт.
func (h *Handler) createOrder(c *gin.Context) {
	ctx, cancel := h.requestCtx(c)
	defer cancel()

	var req domain.CreateOrderRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}
	if req.UserID == "" {
		req.UserID = c.GetHeader(userIDHeader)
	}

	order, err := h.orders.CreateOrder(ctx, &req)
	if err != nil {
		h.writeOrderError(c, err, "Server error while creating order")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order": toOrderDTO(order)})
}

// getOrderByID — GET /api/orders/:id.
func (h *Handler) getOrderByID(c *gin.Context) {
	ctx, cancel := h.requestCtx(c)
	defer cancel()

	order, err := h.orders.GetOrder(ctx, c.Param("id"))
	if err != nil {
		h.writeOrderError(c, err, "Server error")
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": toOrderDTO(order)})
}

// listOrdersByUser — GET /api/users/:id/orders?limit=&offset=.
func (h *Handler) listOrdersByUser(c *gin.Context) {
	ctx, cancel := h.requestCtx(c)
	defer cancel()

	limit, offset := httpx.ParseLimitOffset(c, 20, 100)
	orders, err := h.orders.OrdersByUser(ctx, c.Param("id"), limit, offset)
	if err != nil {
		h.writeOrderError(c, err, "Server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": toOrderDTOs(orders)})
}

// updateOrderStatus — PATCH /api/orders/:id/status. Тело: { status }.
func (h *Handler) updateOrderStatus(c *gin.Context) {
	ctx, cancel := h.requestCtx(c)
	defer cancel()

	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid JSON body"})
		return
	}
	status, ok := domain.ParseStatus(body.Status)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("unknown status %q", body.Status)})
		return
	}

	order, err := h.orders.UpdateStatus(ctx, c.Param("id"), status)
	if err != nil {
		h.writeOrderError(c, err, "Server error")
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": toOrderDTO(order)})
}

// writeOrderError — маппинг ошибок прикладного слоя на HTTP-ответы.
// Бизнес-отказы и валидация → 400 с конкретной причиной;
// всё остальное → 500 с общим текстом (детали только в лог).
func (h *Handler) writeOrderError(c *gin.Context, err error, serverMsg string) {
	var unavailable *domain.ItemUnavailableError
	switch {
	case errors.Is(err, validate.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Product with ID %s is not available", unavailable.ProductID),
		})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	default:
		h.log.Errorf(c.Request.Context(), "%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": serverMsg})
	}
}
