package service

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

// mockBackend keeps a server-side cart and a product table.
type mockBackend struct {
	m        sync.Mutex
	lines    []domain.CartLine
	products map[string]domain.Product
	err      error
	calls    []string
	lastTok  string

	authResult domain.AuthResult
	me         domain.User
	created    []backend.ProductInput
}

func newMockBackend() *mockBackend {
	return &mockBackend{
		products: map[string]domain.Product{
			"p1": {ID: "p1", Name: "Aspirin", Price: decimal.NewFromInt(5000)},
			"p2": {ID: "p2", Name: "Loratadina", Price: decimal.NewFromInt(1200)},
		},
		me: domain.User{ID: "a1", IsAdmin: true},
	}
}

func (m *mockBackend) record(op, token string) error {
	m.calls = append(m.calls, op)
	m.lastTok = token
	return m.err
}

func (m *mockBackend) snapshot() domain.CartSnapshot {
	return domain.NewSnapshot(append([]domain.CartLine(nil), m.lines...))
}

func (m *mockBackend) GetCart(_ context.Context, token string) (domain.CartSnapshot, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("get", token); err != nil {
		return domain.CartSnapshot{}, err
	}
	return m.snapshot(), nil
}

func (m *mockBackend) AddItem(_ context.Context, token, productID string, quantity int) (domain.CartSnapshot, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("add", token); err != nil {
		return domain.CartSnapshot{}, err
	}
	for i := range m.lines {
		if m.lines[i].ID == productID {
			m.lines[i].Quantity += quantity
			return m.snapshot(), nil
		}
	}
	// name and price deliberately left out so the service has to fill them
	m.lines = append(m.lines, domain.CartLine{ID: productID, Name: domain.DefaultLineName, Quantity: quantity})
	return m.snapshot(), nil
}

func (m *mockBackend) UpdateItem(_ context.Context, token, productID string, quantity int) (domain.CartSnapshot, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("update", token); err != nil {
		return domain.CartSnapshot{}, err
	}
	for i := range m.lines {
		if m.lines[i].ID == productID {
			m.lines[i].Quantity = quantity
		}
	}
	return m.snapshot(), nil
}

func (m *mockBackend) RemoveItem(_ context.Context, token, productID string) (domain.CartSnapshot, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("remove", token); err != nil {
		return domain.CartSnapshot{}, err
	}
	kept := m.lines[:0]
	for _, l := range m.lines {
		if l.ID != productID {
			kept = append(kept, l)
		}
	}
	m.lines = kept
	return m.snapshot(), nil
}

func (m *mockBackend) ListProducts(context.Context, backend.ProductFilter) ([]domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("list", ""); err != nil {
		return nil, err
	}
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockBackend) GetProduct(_ context.Context, id string) (domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("get_product", ""); err != nil {
		return domain.Product{}, err
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, backend.ErrNotFound
	}
	return p, nil
}

func (m *mockBackend) Login(context.Context, backend.Credentials) (domain.AuthResult, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("login", ""); err != nil {
		return domain.AuthResult{}, err
	}
	return m.authResult, nil
}

func (m *mockBackend) Register(context.Context, backend.Registration) (domain.AuthResult, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("register", ""); err != nil {
		return domain.AuthResult{}, err
	}
	return m.authResult, nil
}

func (m *mockBackend) CreateProduct(_ context.Context, token string, in backend.ProductInput) (domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("create", token); err != nil {
		return domain.Product{}, err
	}
	m.created = append(m.created, in)
	return domain.Product{ID: "new", Name: in.Name, Price: in.Price}, nil
}

func (m *mockBackend) UpdateProduct(_ context.Context, token, id string, in backend.ProductInput) (domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("update_product", token); err != nil {
		return domain.Product{}, err
	}
	return domain.Product{ID: id, Name: in.Name, Price: in.Price}, nil
}

func (m *mockBackend) DeleteProduct(_ context.Context, token, _ string) error {
	m.m.Lock()
	defer m.m.Unlock()
	return m.record("delete_product", token)
}

func (m *mockBackend) Me(_ context.Context, token string) (domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if err := m.record("me", token); err != nil {
		return domain.User{}, err
	}
	return m.me, nil
}

func (m *mockBackend) setErr(err error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.err = err
}
