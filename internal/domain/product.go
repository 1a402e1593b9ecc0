package domain

import (
	"github.com/shopspring/decimal"
)

type Product struct {
	ID                   string          `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	Price                decimal.Decimal `json:"price"`
	Category             string          `json:"category,omitempty"`
	ImageURL             string          `json:"image_url,omitempty"`
	Stock                int             `json:"stock"`
	RequiresPrescription bool            `json:"requires_prescription"`
	Active               bool            `json:"active"`
}

// Line returns the cart line for one unit of p.
func (p Product) Line() CartLine {
	name := p.Name
	if name == "" {
		name = DefaultLineName
	}
	price := p.Price
	if price.IsNegative() {
		price = decimal.Zero
	}
	return CartLine{
		ID:                   p.ID,
		Name:                 name,
		UnitPrice:            price,
		Quantity:             1,
		ImageURL:             p.ImageURL,
		RequiresPrescription: p.RequiresPrescription,
	}
}

type User struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	IsAdmin bool   `json:"is_admin"`
}

// AuthResult is what the backend returns on login and register.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
