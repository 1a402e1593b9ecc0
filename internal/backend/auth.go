package backend

import (
	"context"
	"net/http"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/internal/domain"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Address  string `json:"address,omitempty"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (domain.AuthResult, error) {
	var res domain.AuthResult
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/login", body: creds, result: &res})
	return res, err
}

func (c *Client) Register(ctx context.Context, reg Registration) (domain.AuthResult, error) {
	var res domain.AuthResult
	err := c.do(ctx, call{method: http.MethodPost, path: "/auth/register", body: reg, result: &res})
	return res, err
}

// Me returns the user the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (domain.User, error) {
	var u domain.User
	err := c.get(ctx, "/auth/me", token, &u)
	return u, err
}
