package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"farm-livestock-history/internal/platform/httpclient"
	"farm-livestock-history/internal/ports/auth"
)

var (
	ErrNotConfigured = errors.New("accounts client not configured")
	ErrUnauthorized  = errors.New("accounts unauthorized")
	ErrUpstream      = errors.New("accounts upstream error")
)

// Config del cliente del servicio de cuentas.
// BaseURL normalmente viene de AUTH_URL en el servicio que lo instancie.
type Config struct {
	BaseURL string
	APIKey  string

	// Opcional: nombre del header donde se manda la API key.
	// Si está vacío, se usa "X-Api-Key".
	APIKeyHeader string

	Timeout time.Duration
}

type Client struct {
	apiKey       string
	apiKeyHeader string
	http         *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}

	hc, err := httpclient.NewWithBaseURL(strings.TrimSpace(cfg.BaseURL), cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}, nil
}

// NewClientWithHTTP permite inyectar el httpclient (p.ej. para tests).
func NewClientWithHTTP(cfg Config, hc *httpclient.Client) *Client {
	h := strings.TrimSpace(cfg.APIKeyHeader)
	if h == "" {
		h = "X-Api-Key"
	}
	hc.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	return &Client{
		apiKey:       strings.TrimSpace(cfg.APIKey),
		apiKeyHeader: h,
		http:         hc,
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http != nil && c.http.BaseURL != ""
}

// VerifyToken llama al servicio de cuentas para validar un token y
// traer los claims del usuario.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if !c.IsConfigured() {
		return auth.Claims{}, ErrNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrUnauthorized
	}

	headers := map[string]string{
		"Authorization": "Bearer " + token,
	}
	if c.apiKey != "" {
		headers[c.apiKeyHeader] = c.apiKey
	}

	var out struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
		Role   string `json:"role"`
	}

	err := c.http.DoJSON(ctx, http.MethodPost, "/v1/tokens/verify", headers,
		map[string]string{"token": token}, &out)
	if err != nil {
		var httpErr *httpclient.HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return auth.Claims{}, ErrUnauthorized
			default:
				return auth.Claims{}, fmt.Errorf("%w: status=%d", ErrUpstream, httpErr.StatusCode)
			}
		}
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Claims{}, errors.New("accounts response missing user_id")
	}

	return auth.Claims{
		UserID: out.UserID,
		Email:  strings.TrimSpace(out.Email),
		Role:   auth.ParseRole(out.Role),
	}, nil
}
