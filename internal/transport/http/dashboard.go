package rest

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/visioncart/orders/internal/domain"
)

// dashboardSummary — GET /api/dashboard/summary?period=daily|weekly|monthly|yearly.
// Сервис дашборда не возвращает ошибок: при недоступном источнике
// клиент получает синтетическую сводку той же формы.
func (h *Handler) dashboardSummary(c *gin.Context) {
	ctx, cancel := h.requestCtx(c)
	defer cancel()

	raw := c.DefaultQuery("period", string(domain.PeriodWeekly))
	period, ok := domain.ParsePeriod(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("unknown period %q", raw)})
		return
	}

	summary := h.dashboard.Summary(ctx, period)
	c.JSON(http.StatusOK, gin.H{"summary": toSummaryDTO(summary)})
}
