package domain

import "time"

// Order — заказ магазина оптики. Создаётся только транзакционным
// координатором (repo.Create); статус меняется отдельной операцией.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"user_id"`
	ShippingAddress string      `json:"shipping_address"`
	TotalCents      int64       `json:"total_cents"`
	PaymentMethod   string      `json:"payment_method"`
	Status          Status      `json:"status"`
	Items           []OrderItem `json:"items"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderItem — позиция заказа. PriceCents — снимок цены на момент
// оформления: изменение цены товара не меняет исторические заказы.
type OrderItem struct {
	OrderID    string `json:"order_id"`
	ProductID  string `json:"product_id"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"price_cents"`
}

// ItemInput — пара (товар, количество) из запроса на создание заказа.
type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderRequest — валидированный запрос на создание заказа.
// Цены клиент не передаёт: их читает координатор из каталога.
type CreateOrderRequest struct {
	UserID          string      `json:"userId"`
	ShippingAddress string      `json:"shippingAddress"`
	PaymentMethod   string      `json:"paymentMethod"`
	Items           []ItemInput `json:"items"`
}
