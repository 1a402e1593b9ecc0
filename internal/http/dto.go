package http

import (
	"github.com/shopspring/decimal"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

type CartLineResponse struct {
	ProductID            string            `json:"product_id"`
	Name                 string            `json:"name"`
	UnitPrice            domain.JSONAmount `json:"unit_price"`
	Quantity             int               `json:"quantity"`
	Subtotal             domain.JSONAmount `json:"subtotal"`
	ImageURL             string            `json:"image_url,omitempty"`
	RequiresPrescription bool              `json:"requires_prescription"`
}

type CartResponse struct {
	Items     []CartLineResponse `json:"items"`
	Total     domain.JSONAmount  `json:"total"`
	ItemCount int                `json:"item_count"`
}

func toCartResponse(s domain.CartSnapshot) CartResponse {
	items := make([]CartLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		items[i] = CartLineResponse{
			ProductID:            l.ID,
			Name:                 l.Name,
			UnitPrice:            domain.JSONAmount(l.UnitPrice),
			Quantity:             l.Quantity,
			Subtotal:             domain.JSONAmount(l.Subtotal()),
			ImageURL:             l.ImageURL,
			RequiresPrescription: l.RequiresPrescription,
		}
	}
	return CartResponse{Items: items, Total: domain.JSONAmount(s.Total), ItemCount: s.ItemCount()}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type ProductRequestDTO struct {
	Name                 string            `json:"name"`
	Description          string            `json:"description"`
	Price                domain.JSONAmount `json:"price"`
	Category             string            `json:"category"`
	Stock                int               `json:"stock"`
	ImageURL             string            `json:"image_url"`
	RequiresPrescription bool              `json:"requires_prescription"`
}

func (p ProductRequestDTO) input() backend.ProductInput {
	return backend.ProductInput{
		Name:                 p.Name,
		Description:          p.Description,
		Price:                decimal.Decimal(p.Price),
		Category:             p.Category,
		Stock:                p.Stock,
		ImageURL:             p.ImageURL,
		RequiresPrescription: p.RequiresPrescription,
	}
}

type ProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type UserResponse struct {
	User domain.User `json:"user"`
}
