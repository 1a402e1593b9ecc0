package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
)

type PaymentIntentRequest struct {
	Amount   decimal.Decimal
	Currency string
	// IdempotencyKey is sent as the Idempotency-Key header when set.
	IdempotencyKey string
}

type PaymentIntent struct {
	ClientSecret string `json:"clientSecret"`
}

type paymentIntentPayload struct {
	Amount   json.Number `json:"amount"`
	Currency string      `json:"currency"`
}

func (c *Client) CreatePaymentIntent(ctx context.Context, token string, req PaymentIntentRequest) (PaymentIntent, error) {
	var header map[string]string
	if req.IdempotencyKey != "" {
		header = map[string]string{"Idempotency-Key": req.IdempotencyKey}
	}

	var intent PaymentIntent
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/payments/create-intent",
		token:  token,
		header: header,
		body:   paymentIntentPayload{Amount: json.Number(req.Amount.String()), Currency: req.Currency},
		result: &intent,
	})
	return intent, err
}
