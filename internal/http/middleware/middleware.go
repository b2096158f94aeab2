package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fejiro0/gomart/internal/auth"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	CartCookie = "gomart_cart"
	CartHeader = "X-Cart-Session"
)

type contextKey string

const sessionKey = contextKey("cart_session")

// Authenticator resolves a bearer token to a vendor id.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (int64, error)
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// AuthMiddleware admits requests carrying a valid vendor token and stores
// the vendor id in the request context.
func AuthMiddleware(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing or invalid token")
				return
			}

			vendorID, err := authn.Authenticate(r.Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ctx := auth.WithVendorID(r.Context(), vendorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CartSession reads the cart session from the cookie or header. Requests
// that change the cart and carry neither get a fresh session, returned in
// both the cookie and the header.
func CartSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := r.Header.Get(CartHeader)
		if session == "" {
			if c, err := r.Cookie(CartCookie); err == nil {
				session = c.Value
			}
		}

		if session != "" {
			if _, err := uuid.Parse(session); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid cart session"})
				return
			}
		}

		if session == "" && r.Method != http.MethodGet && r.Method != http.MethodDelete {
			session = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CartCookie,
				Value:    session,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		if session != "" {
			w.Header().Set(CartHeader, session)
		}

		ctx := context.WithValue(r.Context(), sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the cart session, or "" when the request has none.
func SessionFromContext(ctx context.Context) string {
	s, _ := ctx.Value(sessionKey).(string)
	return s
}

func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		})
	}
}
