package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

type CartService interface {
	Load(ctx context.Context) (domain.CartSnapshot, error)
	AddItem(ctx context.Context, product domain.Product) (domain.CartSnapshot, error)
	UpdateQuantity(ctx context.Context, productID string, quantity int) (domain.CartSnapshot, error)
	Increment(ctx context.Context, productID string) (domain.CartSnapshot, error)
	Decrement(ctx context.Context, productID string) (domain.CartSnapshot, error)
	RemoveItem(ctx context.Context, productID string) (domain.CartSnapshot, error)
	Checkout(ctx context.Context) (domain.CartSnapshot, error)
}

type CatalogService interface {
	ListProducts(ctx context.Context, f backend.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (domain.Product, error)
}

type AuthService interface {
	Login(ctx context.Context, creds backend.Credentials) (domain.User, error)
	Register(ctx context.Context, reg backend.Registration) (domain.User, error)
	Logout(ctx context.Context)
}

type AdminService interface {
	CreateProduct(ctx context.Context, in backend.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, id string, in backend.ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type StorefrontHandler struct {
	cart    CartService
	catalog CatalogService
	auth    AuthService
	admin   AdminService
	timeout time.Duration
}

func NewStorefrontHandler(cart CartService, catalog CatalogService, auth AuthService, admin AdminService, timeout time.Duration) *StorefrontHandler {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &StorefrontHandler{
		cart:    cart,
		catalog: catalog,
		auth:    auth,
		admin:   admin,
		timeout: timeout,
	}
}

func (h *StorefrontHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	products, err := h.catalog.ListProducts(ctx, backend.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, ProductsResponse{Products: products})
}

func (h *StorefrontHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.auth.Login(ctx, backend.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, UserResponse{User: user})
}

func (h *StorefrontHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	user, err := h.auth.Register(ctx, backend.Registration{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, UserResponse{User: user})
}

func (h *StorefrontHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.cart.Load(ctx)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	cart, err := h.cart.AddItem(ctx, product)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartResponse(cart))
}

func (h *StorefrontHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	cart, err := h.cart.UpdateQuantity(ctx, chi.URLParam(r, "product_id"), req.Quantity)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *StorefrontHandler) Increment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.cart.Increment(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *StorefrontHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.cart.Decrement(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	cart, err := h.cart.RemoveItem(ctx, chi.URLParam(r, "product_id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

// Checkout hands the cart to the payment page through the shared channel.
func (h *StorefrontHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	cart, err := h.cart.Checkout(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(cart))
}

func (h *StorefrontHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.admin.CreateProduct(ctx, req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *StorefrontHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req ProductRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.admin.UpdateProduct(ctx, chi.URLParam(r, "product_id"), req.input())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *StorefrontHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.admin.DeleteProduct(ctx, chi.URLParam(r, "product_id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
