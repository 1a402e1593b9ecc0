package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

type CatalogBackend interface {
	ListProducts(ctx context.Context, f backend.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

type CatalogService struct {
	backend CatalogBackend
	sfg     singleflight.Group // collapses identical listings in flight
}

func NewCatalogService(b CatalogBackend) *CatalogService {
	return &CatalogService{backend: b}
}

func (s *CatalogService) ListProducts(ctx context.Context, f backend.ProductFilter) ([]domain.Product, error) {
	v, err, _ := s.sfg.Do("list\x00"+f.Category+"\x00"+f.Search, func() (interface{}, error) {
		return s.backend.ListProducts(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Product), nil
}

// GetProduct resolves the product a user picked, so the cart line carries
// its name and price even when the backend answer omits them.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, fmt.Errorf("%w: product id is required", ErrInvalidInput)
	}
	v, err, _ := s.sfg.Do("product\x00"+id, func() (interface{}, error) {
		return s.backend.GetProduct(ctx, id)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}
