package validate

import (
	"context"
	"strconv"
	"strings"
	"testing"
)

func TestValidateRequestFromJSON_OK(t *testing.T) {
	ctx := context.Background()
	validator := NewOrderValidator()

	raw := minimalValidRequestJSON("user-1", "P1", 2)

	req, err := ValidateRequestFromJSON(ctx, validator, []byte(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.UserID != "user-1" || len(req.Items) != 1 || req.Items[0].Quantity != 2 {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestValidateRequestFromJSON_UnknownField(t *testing.T) {
	ctx := context.Background()
	validator := NewOrderValidator()

	raw := `{"unknown":"x",` + minimalValidRequestJSON("user-2", "P1", 1)[1:]
	_, err := ValidateRequestFromJSON(ctx, validator, []byte(raw))
	if err == nil || !strings.Contains(err.Error(), "invalid json") {
		t.Fatalf("expected invalid json error, got: %v", err)
	}
}

func TestValidateRequestFromJSON_TrailingData(t *testing.T) {
	ctx := context.Background()
	validator := NewOrderValidator()

	raw := minimalValidRequestJSON("user-3", "P1", 1) + "{}"
	_, err := ValidateRequestFromJSON(ctx, validator, []byte(raw))
	if err == nil || !strings.Contains(err.Error(), "trailing data") {
		t.Fatalf("expected trailing data error, got: %v", err)
	}
}

func TestValidateRequestFromJSON_DomainError(t *testing.T) {
	ctx := context.Background()
	validator := NewOrderValidator()

	// Не валиден: нулевое количество
	raw := minimalValidRequestJSON("user-4", "P1", 0)
	_, err := ValidateRequestFromJSON(ctx, validator, []byte(raw))
	if err == nil {
		t.Fatalf("expected domain validation error, got nil")
	}
}

// ---- helpers ----

func minimalValidRequestJSON(userID, productID string, quantity int) string {
	return `{
  "userId": "` + userID + `",
  "shippingAddress": "1 Main St",
  "paymentMethod": "credit_card",
  "items": [{"productId": "` + productID + `", "quantity": ` + strconv.Itoa(quantity) + `}]
}`
}
