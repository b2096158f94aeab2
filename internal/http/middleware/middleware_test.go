package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fejiro0/gomart/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubAuthenticator map[string]int64

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (int64, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("unknown token")
}

func TestAuthMiddleware(t *testing.T) {
	var seen int64
	h := AuthMiddleware(stubAuthenticator{"good": 42})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = auth.VendorIDFromContext(r.Context())
	}))

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{"valid", "Bearer good", http.StatusOK},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"no bearer prefix", "good", http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
	assert.Equal(t, int64(42), seen)
}

func TestCartSession(t *testing.T) {
	var seen string
	h := CartSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context())
	}))

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		seen = ""
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}

	t.Run("issues a session on mutation", func(t *testing.T) {
		w := serve(httptest.NewRequest(http.MethodPost, "/cart/items", nil))
		require.NotEmpty(t, seen)
		assert.Equal(t, seen, w.Header().Get(CartHeader))
		require.Len(t, w.Result().Cookies(), 1)
		assert.Equal(t, seen, w.Result().Cookies()[0].Value)
	})

	t.Run("reads do not issue", func(t *testing.T) {
		w := serve(httptest.NewRequest(http.MethodGet, "/cart", nil))
		assert.Empty(t, seen)
		assert.Empty(t, w.Header().Get(CartHeader))
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set(CartHeader, "9f1c4c1e-9a55-4a8e-b2f6-3f2f9b0c8e11")
		req.AddCookie(&http.Cookie{Name: CartCookie, Value: "2c5ea4c0-4067-11e9-8bad-9b1deb4d3b7d"})
		serve(req)
		assert.Equal(t, "9f1c4c1e-9a55-4a8e-b2f6-3f2f9b0c8e11", seen)
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/cart/items", nil)
		req.AddCookie(&http.Cookie{Name: CartCookie, Value: "2c5ea4c0-4067-11e9-8bad-9b1deb4d3b7d"})
		w := serve(req)
		assert.Equal(t, "2c5ea4c0-4067-11e9-8bad-9b1deb4d3b7d", seen)
		assert.Empty(t, w.Result().Cookies(), "existing session is not reissued")
	})

	t.Run("malformed session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set(CartHeader, "../../etc")
		w := serve(req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRequestLogger(t *testing.T) {
	h := RequestLogger(zaptest.NewLogger(t))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, w.Code)
}
