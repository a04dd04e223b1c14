package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-livestock-history/internal/platform/httpclient"
	"farm-livestock-history/internal/ports/auth"
)

// roundTripFunc inyecta respuestas sin red real.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestVerifier(rt roundTripFunc) *Verifier {
	hc := httpclient.NewWithTransport(0, rt)
	client := NewClientWithHTTP(Config{
		BaseURL: "http://accounts.local",
		APIKey:  "k-123",
	}, hc)
	return NewVerifier(client)
}

func TestVerify_Success(t *testing.T) {
	var captured *http.Request
	v := newTestVerifier(func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(http.StatusOK, `{"user_id":"u-9","email":"x@example.com","role":"viewer"}`), nil
	})

	claims, err := v.Verify(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "u-9", claims.UserID)
	assert.Equal(t, "x@example.com", claims.Email)
	assert.Equal(t, auth.RoleViewer, claims.Role)

	require.NotNil(t, captured)
	assert.Equal(t, "http://accounts.local/v1/tokens/verify", captured.URL.String())
	assert.Equal(t, "Bearer tok-1", captured.Header.Get("Authorization"))
	assert.Equal(t, "k-123", captured.Header.Get("X-Api-Key"))

	var sent map[string]string
	require.NoError(t, json.NewDecoder(captured.Body).Decode(&sent))
	assert.Equal(t, "tok-1", sent["token"])
}

func TestVerify_UpstreamRejections(t *testing.T) {
	ctx := context.Background()

	v := newTestVerifier(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{}`), nil
	})
	_, err := v.Verify(ctx, "tok")
	assert.ErrorIs(t, err, ErrUnauthorized)

	v = newTestVerifier(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `upstream down`), nil
	})
	_, err = v.Verify(ctx, "tok")
	assert.ErrorIs(t, err, ErrUpstream)

	v = newTestVerifier(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("conn refused")
	})
	_, err = v.Verify(ctx, "tok")
	assert.ErrorIs(t, err, ErrUpstream)

	// 200 sin user_id no alcanza
	v = newTestVerifier(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"email":"x@example.com"}`), nil
	})
	_, err = v.Verify(ctx, "tok")
	assert.Error(t, err)
}

func TestVerify_EmptyTokenAndUnconfigured(t *testing.T) {
	ctx := context.Background()

	v := newTestVerifier(func(*http.Request) (*http.Response, error) {
		t.Fatal("no debería llegar a la red")
		return nil, nil
	})
	_, err := v.Verify(ctx, "   ")
	assert.ErrorIs(t, err, ErrTokenEmpty)

	_, err = NewVerifier(nil).Verify(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
