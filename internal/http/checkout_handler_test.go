package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/cartstore"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/channel"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/checkout"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/service"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/session"
)

// pharmacyAPI is an in-memory stand-in for the REST backend used by both
// processes.
type pharmacyAPI struct {
	mu       sync.Mutex
	lines    map[string]domain.CartLine
	order    []string
	products map[string]domain.Product
	intents  []backend.PaymentIntentRequest
}

func newPharmacyAPI() *pharmacyAPI {
	return &pharmacyAPI{
		lines: map[string]domain.CartLine{},
		products: map[string]domain.Product{
			"1": {ID: "1", Name: "Aspirin", Price: decimal.NewFromInt(5000)},
			"2": {ID: "2", Name: "Ibuprofeno", Price: decimal.RequireFromString("2500.25")},
		},
	}
}

func (a *pharmacyAPI) snapshot() domain.CartSnapshot {
	lines := make([]domain.CartLine, 0, len(a.order))
	for _, id := range a.order {
		if l, ok := a.lines[id]; ok {
			lines = append(lines, l)
		}
	}
	return domain.NewSnapshot(lines)
}

func (a *pharmacyAPI) GetCart(context.Context, string) (domain.CartSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot(), nil
}

func (a *pharmacyAPI) AddItem(_ context.Context, _, id string, qty int) (domain.CartSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.lines[id]
	if !ok {
		p := a.products[id]
		l = domain.CartLine{ID: id, Name: p.Name, UnitPrice: p.Price}
		a.order = append(a.order, id)
	}
	l.Quantity += qty
	a.lines[id] = l
	return a.snapshot(), nil
}

func (a *pharmacyAPI) UpdateItem(_ context.Context, _, id string, qty int) (domain.CartSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if l, ok := a.lines[id]; ok {
		l.Quantity = qty
		a.lines[id] = l
	}
	return a.snapshot(), nil
}

func (a *pharmacyAPI) RemoveItem(_ context.Context, _, id string) (domain.CartSnapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.lines, id)
	return a.snapshot(), nil
}

func (a *pharmacyAPI) ListProducts(context.Context, backend.ProductFilter) ([]domain.Product, error) {
	return nil, nil
}

func (a *pharmacyAPI) GetProduct(_ context.Context, id string) (domain.Product, error) {
	p, ok := a.products[id]
	if !ok {
		return domain.Product{}, backend.ErrNotFound
	}
	return p, nil
}

func (a *pharmacyAPI) CreatePaymentIntent(_ context.Context, _ string, req backend.PaymentIntentRequest) (backend.PaymentIntent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.intents = append(a.intents, req)
	return backend.PaymentIntent{ClientSecret: "secret-" + req.IdempotencyKey}, nil
}

type twoContexts struct {
	api        *pharmacyAPI
	storefront http.Handler
	checkout   http.Handler
	reader     *cartstore.SharedCartStore
}

// newTwoContexts wires a storefront and a checkout process that share only
// the channel.
func newTwoContexts(t *testing.T) *twoContexts {
	shared := channel.NewMemoryChannel()
	api := newPharmacyAPI()
	ctx := context.Background()

	writerStore := cartstore.New(shared)
	t.Cleanup(writerStore.Close)
	writerSession := session.New(shared, "")
	writerSession.Set(ctx, domain.AuthResult{Token: "tok", User: domain.User{ID: "u1"}})
	cart := service.NewCartService(api, writerStore, writerSession)
	sf := NewStorefrontHandler(cart, service.NewCatalogService(api), nil, nil, 0)

	readerStore := cartstore.New(shared)
	t.Cleanup(readerStore.Close)
	orders := checkout.NewOrderManager(readerStore, session.New(shared, ""), api, "COP")
	orders.Start(ctx)
	t.Cleanup(orders.Stop)
	co := NewCheckoutHandler(orders, readerStore.Activity(), 0)

	return &twoContexts{
		api:        api,
		storefront: NewStorefrontRouter(sf, RouterOptions{Service: "storefront"}),
		checkout:   NewCheckoutRouter(co, RouterOptions{Service: "checkout"}),
		reader:     readerStore,
	}
}

func (c *twoContexts) order(t *testing.T) checkout.Summary {
	t.Helper()
	rec := do(t, c.checkout, http.MethodGet, "/api/order", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var s checkout.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	return s
}

func TestCheckout_SeesStorefrontCart(t *testing.T) {
	c := newTwoContexts(t)

	require.Equal(t, http.StatusCreated, do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"1"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"1"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"2"}`).Code)

	s := c.order(t)
	require.Len(t, s.Lines, 2)
	assert.Equal(t, "Aspirin x2 - $10000.00", s.Lines[0].Text)
	assert.Equal(t, "Ibuprofeno x1 - $2500.25", s.Lines[1].Text)
	assert.Equal(t, "12500.25", s.Total)
}

func TestCheckout_EveryOrderPageRereads(t *testing.T) {
	c := newTwoContexts(t)
	do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"1"}`)
	do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"1"}`)
	require.Len(t, c.order(t).Lines, 1)

	// still active: the next page load sees the edit anyway
	do(t, c.storefront, http.MethodPost, "/api/cart/items/1/decrement", "")
	s := c.order(t)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, 1, s.Lines[0].Quantity)

	do(t, c.storefront, http.MethodPost, "/api/cart/items/1/decrement", "")
	s = c.order(t)
	assert.Empty(t, s.Lines)
	assert.True(t, s.Empty)
	assert.Equal(t, "0.00", s.Total)
}

func TestCheckout_ReloadsAfterIdle(t *testing.T) {
	c := newTwoContexts(t)
	do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"2"}`)

	c.reader.Activity().SetActive(false)
	require.Equal(t, http.StatusOK, do(t, c.checkout, http.MethodGet, "/health", "").Code)
	assert.False(t, c.reader.Activity().IsActive(), "health is outside the api")

	assert.Len(t, c.order(t).Lines, 1)
	assert.True(t, c.reader.Activity().IsActive())
}

func TestPay_ChargesEditMadeAfterPageLoad(t *testing.T) {
	c := newTwoContexts(t)
	do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"1"}`)
	do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"1"}`)
	require.Equal(t, "10000.00", c.order(t).Total)

	do(t, c.storefront, http.MethodPost, "/api/cart/items/1/decrement", "")

	rec := do(t, c.checkout, http.MethodPost, "/api/pay", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp PaymentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "5000.00", resp.Total)
	require.Len(t, c.api.intents, 1)
	assert.True(t, c.api.intents[0].Amount.Equal(decimal.NewFromInt(5000)))
}

func TestPay(t *testing.T) {
	c := newTwoContexts(t)
	do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"2"}`)
	c.order(t)

	rec := do(t, c.checkout, http.MethodPost, "/api/pay", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp PaymentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "2500.25", resp.Total)
	assert.Equal(t, "COP", resp.Currency)
	assert.Equal(t, "secret-"+resp.CheckoutID, resp.ClientSecret)
	require.Len(t, c.api.intents, 1)
}

func TestPay_EmptyOrder(t *testing.T) {
	c := newTwoContexts(t)

	rec := do(t, c.checkout, http.MethodPost, "/api/pay", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_cart", decodeError(t, rec).Code)
}

func TestConfirmPayment(t *testing.T) {
	c := newTwoContexts(t)
	do(t, c.storefront, http.MethodPost, "/api/cart/items", `{"product_id":"2"}`)

	rec := do(t, c.checkout, http.MethodPost, "/api/pay", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var pay PaymentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&pay))

	rec = do(t, c.checkout, http.MethodPost, "/api/pay/"+pay.CheckoutID+"/confirm", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ConfirmResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, pay.CheckoutID, resp.CheckoutID)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, "2500.25", resp.Total)

	rec = do(t, c.checkout, http.MethodPost, "/api/pay/"+pay.CheckoutID+"/confirm", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}
