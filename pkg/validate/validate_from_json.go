package validate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/visioncart/orders/internal/domain"
	"github.com/visioncart/orders/internal/ports"
)

// ValidateRequestFromJSON — валидация запроса на заказ из JSON.
func ValidateRequestFromJSON(ctx context.Context, validator ports.OrderValidator, raw []byte) (*domain.CreateOrderRequest, error) {
	var req domain.CreateOrderRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	// гарантируем отсутствие данных вне объекта
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return nil, fmt.Errorf("invalid json: trailing data")
	}
	if err := validator.ValidateCreate(ctx, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
