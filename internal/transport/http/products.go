package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// listProducts — GET /api/products. Каталог только читается:
// цены и доступность нужны фронтенду для оформления заказа.
func (h *Handler) listProducts(c *gin.Context) {
	ctx, cancel := h.requestCtx(c)
	defer cancel()

	products, err := h.products.List(ctx)
	if err != nil {
		h.log.Errorf(c.Request.Context(), "list products failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": toProductDTOs(products)})
}
