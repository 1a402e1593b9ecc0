package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/cartstore"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/channel"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/session"
)

type mockPayments struct {
	mu   sync.Mutex
	reqs []backend.PaymentIntentRequest
	tok  string
	err  error
}

func (m *mockPayments) CreatePaymentIntent(_ context.Context, token string, req backend.PaymentIntentRequest) (backend.PaymentIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tok = token
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return backend.PaymentIntent{}, m.err
	}
	return backend.PaymentIntent{ClientSecret: "pi_secret_" + req.IdempotencyKey}, nil
}

type mockPublisher struct {
	events []CompletedEvent
	err    error
}

func (m *mockPublisher) PublishCheckoutCompleted(_ context.Context, ev CompletedEvent) error {
	m.events = append(m.events, ev)
	return m.err
}

type checkoutFixture struct {
	shared   *channel.MemoryChannel
	writer   *cartstore.SharedCartStore
	reader   *cartstore.SharedCartStore
	payments *mockPayments
	manager  *OrderManager
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	shared := channel.NewMemoryChannel()
	writer := cartstore.New(shared)
	reader := cartstore.New(shared)
	t.Cleanup(writer.Close)
	t.Cleanup(reader.Close)

	payments := &mockPayments{}
	m := NewOrderManager(reader, session.New(shared, ""), payments, "")
	return &checkoutFixture{shared: shared, writer: writer, reader: reader, payments: payments, manager: m}
}

func (f *checkoutFixture) login(t *testing.T) {
	t.Helper()
	session.New(f.shared, "").Set(context.Background(), domain.AuthResult{Token: "tok", User: domain.User{ID: "u1"}})
}

func sampleOrder() domain.CartSnapshot {
	return domain.NewSnapshot([]domain.CartLine{
		{ID: "1", Name: "Aspirin", UnitPrice: decimal.NewFromInt(5000), Quantity: 2},
		{ID: "2", Name: "Ibuprofeno", UnitPrice: decimal.RequireFromString("1250.50"), Quantity: 1},
	})
}

func TestStart_LoadsWrittenOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.writer.Write(ctx, sampleOrder())

	f.manager.Start(ctx)
	defer f.manager.Stop()

	order := f.manager.Order()
	require.Len(t, order.Lines, 2)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("11250.50")))
}

func TestStart_EmptyChannel(t *testing.T) {
	f := newCheckoutFixture(t)
	f.manager.Start(context.Background())
	defer f.manager.Stop()

	assert.True(t, f.manager.Order().IsEmpty())
	assert.True(t, f.manager.Summary().Empty)
}

func TestReloadsWhenContextBecomesActive(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.manager.Start(ctx)
	defer f.manager.Stop()
	require.True(t, f.manager.Order().IsEmpty())

	f.writer.Write(ctx, sampleOrder())
	assert.True(t, f.manager.Order().IsEmpty(), "no reload without activation")

	f.reader.Activity().Touch()
	assert.Len(t, f.manager.Order().Lines, 2)

	// already active: a second write is not picked up until the next transition
	f.writer.Write(ctx, domain.NewSnapshot(sampleOrder().Lines[:1]))
	f.reader.Activity().Touch()
	assert.Len(t, f.manager.Order().Lines, 2)

	f.reader.Activity().SetActive(false)
	f.reader.Activity().Touch()
	assert.Len(t, f.manager.Order().Lines, 1)
}

func TestStop_Unsubscribes(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.manager.Start(ctx)
	f.manager.Stop()

	f.writer.Write(ctx, sampleOrder())
	f.reader.Activity().Touch()
	assert.True(t, f.manager.Order().IsEmpty())
}

func TestPay_EmptyOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.login(t)
	f.manager.Start(context.Background())
	defer f.manager.Stop()

	_, err := f.manager.Pay(context.Background())
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Empty(t, f.payments.reqs)
}

func TestPay_RequiresSession(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.writer.Write(ctx, sampleOrder())
	f.manager.Start(ctx)
	defer f.manager.Stop()

	_, err := f.manager.Pay(ctx)
	assert.ErrorIs(t, err, session.ErrNotLoggedIn)
}

func TestPay_CreatesIntentWithoutPublishing(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.login(t)
	f.writer.Write(ctx, sampleOrder())
	pub := &mockPublisher{}
	f.manager.WithPublisher(pub).Start(ctx)
	defer f.manager.Stop()

	res, err := f.manager.Pay(ctx)
	require.NoError(t, err)

	require.Len(t, f.payments.reqs, 1)
	req := f.payments.reqs[0]
	assert.Equal(t, "tok", f.payments.tok)
	assert.Equal(t, "COP", req.Currency)
	assert.True(t, req.Amount.Equal(decimal.RequireFromString("11250.50")))
	assert.Equal(t, res.CheckoutID, req.IdempotencyKey)
	assert.Equal(t, "pi_secret_"+res.CheckoutID, res.ClientSecret)

	assert.Empty(t, pub.events, "nothing is announced before the payment is confirmed")
	assert.Len(t, f.manager.Order().Lines, 2, "order kept for a retry")
}

func TestPay_ChargesFreshOrderWhileActive(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.login(t)
	f.writer.Write(ctx, sampleOrder())
	f.manager.Start(ctx)
	defer f.manager.Stop()
	f.reader.Activity().Touch()

	// storefront edits the cart while the payment page stays active
	f.writer.Write(ctx, domain.NewSnapshot([]domain.CartLine{
		{ID: "1", Name: "Aspirin", UnitPrice: decimal.NewFromInt(5000), Quantity: 1},
	}))
	f.reader.Activity().Touch()

	res, err := f.manager.Pay(ctx)
	require.NoError(t, err)
	require.Len(t, f.payments.reqs, 1)
	assert.True(t, f.payments.reqs[0].Amount.Equal(decimal.NewFromInt(5000)))
	assert.Len(t, res.Order.Lines, 1)
	assert.Len(t, f.manager.Order().Lines, 1)
}

func TestPay_ClearedCartIsEmptyOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.login(t)
	f.writer.Write(ctx, sampleOrder())
	f.manager.Start(ctx)
	defer f.manager.Stop()

	f.writer.Clear(ctx)
	_, err := f.manager.Pay(ctx)
	assert.ErrorIs(t, err, ErrEmptyOrder)
	assert.Empty(t, f.payments.reqs)
}

func TestConfirm_PublishesOnce(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.login(t)
	f.writer.Write(ctx, sampleOrder())
	pub := &mockPublisher{}
	f.manager.WithPublisher(pub).Start(ctx)
	defer f.manager.Stop()

	res, err := f.manager.Pay(ctx)
	require.NoError(t, err)

	order, err := f.manager.Confirm(ctx, res.CheckoutID)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("11250.50")))

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, res.CheckoutID, ev.CheckoutID)
	require.Len(t, ev.Items, 2)
	assert.Equal(t, "Aspirin", ev.Items[0].Name)

	_, err = f.manager.Confirm(ctx, res.CheckoutID)
	assert.ErrorIs(t, err, ErrUnknownCheckout)
	assert.Len(t, pub.events, 1)
}

func TestConfirm_UnknownCheckout(t *testing.T) {
	f := newCheckoutFixture(t)
	pub := &mockPublisher{}
	f.manager.WithPublisher(pub)

	_, err := f.manager.Confirm(context.Background(), "never-created")
	assert.ErrorIs(t, err, ErrUnknownCheckout)
	assert.Empty(t, pub.events)
}

func TestConfirm_PublishFailureDoesNotFail(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.login(t)
	f.writer.Write(ctx, sampleOrder())
	f.manager.WithPublisher(&mockPublisher{err: errors.New("broker down")}).Start(ctx)
	defer f.manager.Stop()

	res, err := f.manager.Pay(ctx)
	require.NoError(t, err)
	_, err = f.manager.Confirm(ctx, res.CheckoutID)
	assert.NoError(t, err)
}

func TestPay_AuthErrorClearsSession(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.login(t)
	f.writer.Write(ctx, sampleOrder())
	f.payments.err = fmt.Errorf("POST /payments/create-intent: %w", backend.ErrUnauthorized)
	f.manager.Start(ctx)
	defer f.manager.Stop()

	_, err := f.manager.Pay(ctx)
	require.ErrorIs(t, err, backend.ErrUnauthorized)

	_, err = f.shared.Get(ctx, session.DefaultKey)
	assert.ErrorIs(t, err, channel.ErrKeyNotFound)
}
