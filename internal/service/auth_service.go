package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/session"
)

type AuthBackend interface {
	Login(ctx context.Context, creds backend.Credentials) (domain.AuthResult, error)
	Register(ctx context.Context, reg backend.Registration) (domain.AuthResult, error)
}

// AuthService relays credentials to the backend and keeps the returned
// token in the session. The cart is loaded right after a successful login.
type AuthService struct {
	backend AuthBackend
	session *session.Session
	cart    *CartService
}

func NewAuthService(b AuthBackend, sess *session.Session, cart *CartService) *AuthService {
	return &AuthService{backend: b, session: sess, cart: cart}
}

func (s *AuthService) Login(ctx context.Context, creds backend.Credentials) (domain.User, error) {
	creds.Email = strings.TrimSpace(creds.Email)
	if err := validateCredentials(creds.Email, creds.Password); err != nil {
		return domain.User{}, err
	}
	res, err := s.backend.Login(ctx, creds)
	if err != nil {
		return domain.User{}, err
	}
	s.start(ctx, res)
	return res.User, nil
}

func (s *AuthService) Register(ctx context.Context, reg backend.Registration) (domain.User, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	if err := validateCredentials(reg.Email, reg.Password); err != nil {
		return domain.User{}, err
	}
	if strings.TrimSpace(reg.Name) == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	res, err := s.backend.Register(ctx, reg)
	if err != nil {
		return domain.User{}, err
	}
	s.start(ctx, res)
	return res.User, nil
}

func (s *AuthService) Logout(ctx context.Context) {
	s.session.Clear(ctx)
	s.cart.Reset(ctx)
}

func (s *AuthService) start(ctx context.Context, res domain.AuthResult) {
	s.session.Set(ctx, res)
	if res.User.IsAdmin {
		return
	}
	// a failed load keeps the empty cart; the user sees it on the next refresh
	_, _ = s.cart.Load(ctx)
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}
