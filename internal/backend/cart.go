package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

// cartResponse is the backend cart; items carry live product data.
type cartResponse struct {
	ID     string          `json:"id"`
	UserID string          `json:"user_id"`
	Items  json.RawMessage `json:"items"`
}

func (r cartResponse) snapshot() (domain.CartSnapshot, error) {
	if len(r.Items) == 0 || string(r.Items) == "null" {
		return domain.EmptySnapshot(), nil
	}
	lines, err := domain.DecodeLines(r.Items)
	if err != nil {
		return domain.CartSnapshot{}, err
	}
	return domain.NewSnapshot(lines), nil
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

func (c *Client) cartCall(ctx context.Context, cl call) (domain.CartSnapshot, error) {
	var resp cartResponse
	cl.result = &resp
	if err := c.do(ctx, cl); err != nil {
		return domain.CartSnapshot{}, err
	}
	return resp.snapshot()
}

func (c *Client) GetCart(ctx context.Context, token string) (domain.CartSnapshot, error) {
	return c.cartCall(ctx, call{method: http.MethodGet, path: "/cart", token: token})
}

func (c *Client) AddItem(ctx context.Context, token, productID string, quantity int) (domain.CartSnapshot, error) {
	return c.cartCall(ctx, call{
		method: http.MethodPost,
		path:   "/cart/items",
		token:  token,
		body:   addItemRequest{ProductID: productID, Quantity: quantity},
	})
}

func (c *Client) UpdateItem(ctx context.Context, token, productID string, quantity int) (domain.CartSnapshot, error) {
	return c.cartCall(ctx, call{
		method: http.MethodPut,
		path:   "/cart/items/" + url.PathEscape(productID),
		token:  token,
		body:   updateItemRequest{Quantity: quantity},
	})
}

func (c *Client) RemoveItem(ctx context.Context, token, productID string) (domain.CartSnapshot, error) {
	return c.cartCall(ctx, call{
		method: http.MethodDelete,
		path:   "/cart/items/" + url.PathEscape(productID),
		token:  token,
	})
}
