package service

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

func TestLogin_StoresSessionAndLoadsCart(t *testing.T) {
	f := setup(t, false)
	f.backend.authResult = domain.AuthResult{Token: "jwt", User: domain.User{ID: "u1", Name: "Ana"}}
	f.backend.lines = []domain.CartLine{{ID: "p1", UnitPrice: decimal.NewFromInt(5000), Quantity: 2}}
	auth := NewAuthService(f.backend, f.session, f.cart)

	u, err := auth.Login(context.Background(), backend.Credentials{Email: " ana@example.com ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)

	token, err := f.session.Token()
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
	assert.Equal(t, 2, f.cart.ItemCount())
	assert.True(t, f.readerView().Total.Equal(decimal.NewFromInt(10000)))
}

func TestLogin_AdminSkipsCart(t *testing.T) {
	f := setup(t, false)
	f.backend.authResult = domain.AuthResult{Token: "jwt", User: domain.User{ID: "a1", IsAdmin: true}}
	auth := NewAuthService(f.backend, f.session, f.cart)

	_, err := auth.Login(context.Background(), backend.Credentials{Email: "admin@example.com", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"login"}, f.backend.calls)
}

func TestLogin_Validation(t *testing.T) {
	f := setup(t, false)
	auth := NewAuthService(f.backend, f.session, f.cart)

	_, err := auth.Login(context.Background(), backend.Credentials{Email: "", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = auth.Login(context.Background(), backend.Credentials{Email: "not-an-email", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = auth.Register(context.Background(), backend.Registration{Email: "a@b.co", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.backend.calls)
}

func TestLogout_ClearsEverything(t *testing.T) {
	f := setup(t, true)
	ctx := context.Background()
	f.backend.lines = []domain.CartLine{{ID: "p1", UnitPrice: decimal.NewFromInt(1), Quantity: 1}}
	_, err := f.cart.Load(ctx)
	require.NoError(t, err)

	NewAuthService(f.backend, f.session, f.cart).Logout(ctx)

	_, tokErr := f.session.Token()
	assert.Error(t, tokErr)
	assert.True(t, f.readerView().IsEmpty())
}

func TestCatalog_ListProducts(t *testing.T) {
	b := newMockBackend()
	svc := NewCatalogService(b)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			products, err := svc.ListProducts(context.Background(), backend.ProductFilter{})
			assert.NoError(t, err)
			assert.Len(t, products, 2)
		}()
	}
	wg.Wait()
}

func TestCatalog_GetProduct(t *testing.T) {
	svc := NewCatalogService(newMockBackend())

	p, err := svc.GetProduct(context.Background(), "p2")
	require.NoError(t, err)
	assert.Equal(t, "Loratadina", p.Name)

	_, err = svc.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	_, err = svc.GetProduct(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
