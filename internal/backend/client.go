// Package backend is the REST client for the pharmacy API that owns pricing,
// inventory, persistence, authentication and payment intents.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Pr3d4k1ng/Ubuntu-farmachelo/pkg/circuitbreaker"
)

type Client struct {
	http    *resty.Client
	breaker *circuitbreaker.Breaker[*resty.Response]
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	// BreakerFailures consecutive transport failures open the breaker.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http: httpClient,
		breaker: circuitbreaker.New[*resty.Response](circuitbreaker.Settings{
			Name:                "backend",
			ConsecutiveFailures: cfg.BreakerFailures,
			OpenTimeout:         cfg.BreakerTimeout,
			IsSuccessful: func(err error) bool {
				return err == nil || IsClientError(err)
			},
		}),
	}
}

type call struct {
	method string
	path   string
	token  string
	query  map[string]string
	header map[string]string
	body   any
	result any
}

// do runs one request through the breaker and maps every failure onto the
// package error taxonomy.
func (c *Client) do(ctx context.Context, cl call) error {
	_, err := c.breaker.Execute(func() (*resty.Response, error) {
		req := c.http.R().SetContext(ctx)
		if cl.token != "" {
			req.SetAuthToken(cl.token)
		}
		if cl.query != nil {
			req.SetQueryParams(cl.query)
		}
		if cl.header != nil {
			req.SetHeaders(cl.header)
		}
		if cl.body != nil {
			req.SetBody(cl.body)
		}
		if cl.result != nil {
			req.SetResult(cl.result)
		}

		resp, err := req.Execute(cl.method, cl.path)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w: %v", cl.method, cl.path, ErrTransport, err)
		}
		if resp.IsError() {
			return resp, fmt.Errorf("%s %s: %w", cl.method, cl.path, newAPIError(resp.StatusCode(), resp.Body()))
		}
		return resp, nil
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		return fmt.Errorf("%s %s: %w: %v", cl.method, cl.path, ErrTransport, err)
	}
	return err
}

func (c *Client) get(ctx context.Context, path, token string, result any) error {
	return c.do(ctx, call{method: http.MethodGet, path: path, token: token, result: result})
}
