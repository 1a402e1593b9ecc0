package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/channel"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

func TestSession_SharedAcrossContexts(t *testing.T) {
	ctx := context.Background()
	shared := channel.NewMemoryChannel()
	storefront := New(shared, "")
	checkout := New(shared, "")

	storefront.Set(ctx, domain.AuthResult{Token: "jwt", User: domain.User{ID: "u1", Name: "Ana"}})
	checkout.Restore(ctx)

	token, err := checkout.Token()
	require.NoError(t, err)
	assert.Equal(t, "jwt", token)
	u, ok := checkout.User()
	require.True(t, ok)
	assert.Equal(t, "Ana", u.Name)
	assert.False(t, checkout.IsAdmin())

	storefront.Clear(ctx)
	checkout.Restore(ctx)
	_, err = checkout.Token()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSession_MalformedValueLogsOut(t *testing.T) {
	ctx := context.Background()
	shared := channel.NewMemoryChannel()
	require.NoError(t, shared.Set(ctx, DefaultKey, []byte("garbage")))

	s := New(shared, "")
	s.Restore(ctx)

	_, err := s.Token()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestSession_AdminFlagTrusted(t *testing.T) {
	s := New(channel.NewMemoryChannel(), "")
	s.Set(context.Background(), domain.AuthResult{Token: "t", User: domain.User{IsAdmin: true}})

	assert.True(t, s.IsAdmin())
}
