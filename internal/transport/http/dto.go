package rest

import (
	"time"

	"github.com/visioncart/orders/internal/domain"
)

// Внешний контракт отдаёт суммы в валюте (float), внутри всё хранится
// в центах. Конвертация — только здесь, на границе.

type orderItemDTO struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type orderDTO struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	ShippingAddress string         `json:"shippingAddress"`
	TotalAmount     float64        `json:"totalAmount"`
	PaymentMethod   string         `json:"paymentMethod"`
	Status          string         `json:"status"`
	Items           []orderItemDTO `json:"items"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

type productDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Brand   string  `json:"brand"`
	Price   float64 `json:"price"`
	InStock bool    `json:"inStock"`
}

type chartPointDTO struct {
	Label  string  `json:"label"`
	Sales  float64 `json:"sales"`
	Orders int64   `json:"orders"`
}

type topProductDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitsSold int64   `json:"unitsSold"`
	Revenue   float64 `json:"revenue"`
}

type summaryDTO struct {
	Period      string          `json:"period"`
	TotalSales  float64         `json:"totalSales"`
	OrdersCount int64           `json:"ordersCount"`
	GrowthPct   float64         `json:"growthPct"`
	Series      []chartPointDTO `json:"series"`
	TopProducts []topProductDTO `json:"topProducts"`
	GeneratedAt time.Time       `json:"generatedAt"`
}

func centsToAmount(cents int64) float64 {
	return float64(cents) / 100
}

func toOrderDTO(o *domain.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, orderItemDTO{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     centsToAmount(it.PriceCents),
		})
	}
	return orderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		ShippingAddress: o.ShippingAddress,
		TotalAmount:     centsToAmount(o.TotalCents),
		PaymentMethod:   o.PaymentMethod,
		Status:          string(o.Status),
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderDTOs(orders []*domain.Order) []orderDTO {
	out := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderDTO(o))
	}
	return out
}

func toProductDTOs(products []domain.Product) []productDTO {
	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, productDTO{
			ID:      p.ID,
			Name:    p.Name,
			Brand:   p.Brand,
			Price:   centsToAmount(p.PriceCents),
			InStock: p.InStock,
		})
	}
	return out
}

func toSummaryDTO(s *domain.SalesSummary) summaryDTO {
	series := make([]chartPointDTO, 0, len(s.Series))
	for _, pt := range s.Series {
		series = append(series, chartPointDTO{
			Label:  pt.Label,
			Sales:  centsToAmount(pt.SalesCents),
			Orders: pt.Orders,
		})
	}
	top := make([]topProductDTO, 0, len(s.TopProducts))
	for _, tp := range s.TopProducts {
		top = append(top, topProductDTO{
			ProductID: tp.ProductID,
			Name:      tp.Name,
			UnitsSold: tp.UnitsSold,
			Revenue:   centsToAmount(tp.RevenueCents),
		})
	}
	return summaryDTO{
		Period:      string(s.Period),
		TotalSales:  centsToAmount(s.TotalSalesCents),
		OrdersCount: s.OrdersCount,
		GrowthPct:   s.GrowthPct,
		Series:      series,
		TopProducts: top,
		GeneratedAt: s.GeneratedAt,
	}
}
