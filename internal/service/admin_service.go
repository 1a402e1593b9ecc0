package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/backend"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/session"
)

type AdminBackend interface {
	Me(ctx context.Context, token string) (domain.User, error)
	CreateProduct(ctx context.Context, token string, in backend.ProductInput) (domain.Product, error)
	UpdateProduct(ctx context.Context, token, id string, in backend.ProductInput) (domain.Product, error)
	DeleteProduct(ctx context.Context, token, id string) error
}

// AdminService is product CRUD for users the backend flags as admin. The
// flag is re-checked with the backend before every write.
type AdminService struct {
	backend AdminBackend
	session *session.Session
	log     *slog.Logger
}

func NewAdminService(b AdminBackend, sess *session.Session) *AdminService {
	return &AdminService{backend: b, session: sess, log: slog.Default().With("component", "admin_service")}
}

func (s *AdminService) CreateProduct(ctx context.Context, in backend.ProductInput) (domain.Product, error) {
	if err := validateProduct(in); err != nil {
		return domain.Product{}, err
	}
	token, err := s.adminToken(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := s.backend.CreateProduct(ctx, token, in)
	return p, s.checkAuth(ctx, err)
}

func (s *AdminService) UpdateProduct(ctx context.Context, id string, in backend.ProductInput) (domain.Product, error) {
	if id == "" {
		return domain.Product{}, fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	if err := validateProduct(in); err != nil {
		return domain.Product{}, err
	}
	token, err := s.adminToken(ctx)
	if err != nil {
		return domain.Product{}, err
	}
	p, err := s.backend.UpdateProduct(ctx, token, id, in)
	return p, s.checkAuth(ctx, err)
}

func (s *AdminService) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidProduct)
	}
	token, err := s.adminToken(ctx)
	if err != nil {
		return err
	}
	return s.checkAuth(ctx, s.backend.DeleteProduct(ctx, token, id))
}

// adminToken returns the session token once the backend confirms the user
// is still an admin. A rejected token ends the session; a revoked flag is
// written back so later calls fail locally.
func (s *AdminService) adminToken(ctx context.Context) (string, error) {
	token, err := s.session.Token()
	if err != nil {
		return "", err
	}
	if !s.session.IsAdmin() {
		return "", ErrNotAdmin
	}

	user, err := s.backend.Me(ctx, token)
	if err != nil {
		return "", s.checkAuth(ctx, err)
	}
	if !user.IsAdmin {
		s.log.WarnContext(ctx, "admin flag revoked", "user_id", user.ID)
		s.session.Set(ctx, domain.AuthResult{Token: token, User: user})
		return "", ErrNotAdmin
	}
	return token, nil
}

// checkAuth drops the session when the backend rejects it.
func (s *AdminService) checkAuth(ctx context.Context, err error) error {
	if err != nil && backend.IsAuthError(err) {
		s.log.WarnContext(ctx, "admin session rejected", "error", err)
		s.session.Clear(ctx)
	}
	return err
}

func validateProduct(in backend.ProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case strings.TrimSpace(in.Category) == "":
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}
