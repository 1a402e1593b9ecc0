package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

type ProductFilter struct {
	Category string
	Search   string
}

func (c *Client) ListProducts(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	query := map[string]string{}
	if f.Category != "" {
		query["category"] = f.Category
	}
	if f.Search != "" {
		query["search"] = f.Search
	}

	var products []domain.Product
	err := c.do(ctx, call{method: http.MethodGet, path: "/products", query: query, result: &products})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	if err := c.get(ctx, "/products/"+url.PathEscape(id), "", &p); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name                 string
	Description          string
	Price                decimal.Decimal
	Category             string
	Stock                int
	ImageURL             string
	RequiresPrescription bool
}

type productPayload struct {
	Name                 string      `json:"name"`
	Description          string      `json:"description"`
	Price                json.Number `json:"price"`
	Category             string      `json:"category"`
	Stock                int         `json:"stock"`
	ImageURL             string      `json:"image_url,omitempty"`
	RequiresPrescription bool        `json:"requires_prescription"`
}

func (in ProductInput) payload() productPayload {
	return productPayload{
		Name:                 in.Name,
		Description:          in.Description,
		Price:                json.Number(in.Price.String()),
		Category:             in.Category,
		Stock:                in.Stock,
		ImageURL:             in.ImageURL,
		RequiresPrescription: in.RequiresPrescription,
	}
}

func (c *Client) CreateProduct(ctx context.Context, token string, in ProductInput) (domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, call{method: http.MethodPost, path: "/admin/products", token: token, body: in.payload(), result: &p})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, in ProductInput) (domain.Product, error) {
	var p domain.Product
	err := c.do(ctx, call{method: http.MethodPut, path: "/admin/products/" + url.PathEscape(id), token: token, body: in.payload(), result: &p})
	if err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/admin/products/" + url.PathEscape(id), token: token})
}
