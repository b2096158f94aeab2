package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/fejiro0/gomart/internal/auth"
	"github.com/fejiro0/gomart/internal/cache"
	"github.com/fejiro0/gomart/internal/cart"
	api "github.com/fejiro0/gomart/internal/http"
	"github.com/fejiro0/gomart/internal/http/ban"
	handler "github.com/fejiro0/gomart/internal/http/handlers"
	"github.com/fejiro0/gomart/internal/http/middleware"
	"github.com/fejiro0/gomart/internal/inventory"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

type testAPI struct {
	router http.Handler
	store  *repo.Store
	cache  *cache.Memory
	token  string
}

// newTestAPI wires the router over a fresh in-memory store and registers a
// vendor whose token is returned in token.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := zaptest.NewLogger(t)

	store := repo.NewMemoryStore()
	productCache := cache.NewMemory()
	ledger := inventory.NewLedger(store.Products, store.Movements, store.Outbox, log)
	authSvc := auth.NewAuthService(store.Vendors, ban.NewMemoryStrikes(3, time.Minute), auth.NewIssuer("test-secret", time.Hour), log).
		WithCost(bcrypt.MinCost)

	handler.SetLogger(log)
	handler.SetProductRepo(store.Products)
	handler.SetMovementRepo(store.Movements)
	handler.SetMetricsRepo(store.Metrics)
	handler.SetCategoryRepo(store.Categories)
	handler.SetProductCache(productCache)
	handler.SetCartService(cart.NewService(store, ledger, productCache, 30*time.Minute, log))
	handler.SetStockService(inventory.NewService(store.Tx, store.Products, ledger, productCache, log))
	handler.SetAuthService(authSvc)

	a := &testAPI{router: api.NewRouter(authSvc, nil, false, log), store: store, cache: productCache}
	a.token = a.registerVendor(t)
	return a
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (a *testAPI) vendorRequest(method, path string, body any) *httptest.ResponseRecorder {
	return a.vendorRequestAs(a.token, method, path, body)
}

func (a *testAPI) vendorRequestAs(token, method, path string, body any) *httptest.ResponseRecorder {
	req := jsonRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	return a.do(req)
}

func (a *testAPI) cartRequest(session, method, path string, body any) *httptest.ResponseRecorder {
	req := jsonRequest(method, path, body)
	if session != "" {
		req.Header.Set(middleware.CartHeader, session)
	}
	return a.do(req)
}

func (a *testAPI) registerVendor(t *testing.T) string {
	t.Helper()
	w := a.do(jsonRequest(http.MethodPost, "/api/v1/auth/vendor-register", handler.VendorRegistration{
		Email:     gofakeit.Email(),
		StoreName: gofakeit.Company() + " " + gofakeit.UUID(),
		Password:  "correct-horse",
	}))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp handler.RegisterResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Token
}

func (a *testAPI) createProduct(t *testing.T, p handler.ProductRequest) handler.ProductResponse {
	t.Helper()
	w := a.vendorRequest(http.MethodPost, "/api/v1/vendor/products", p)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp handler.ProductResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func (a *testAPI) stock(t *testing.T, productID int64) int {
	t.Helper()
	p, err := a.store.Products.GetByID(t.Context(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func multipartCSV(csvContent string, filename string) (*bytes.Buffer, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(csvContent))

	writer.Close()
	return &buf, writer.FormDataContentType()
}

func productPath(id int64, suffix string) string {
	return fmt.Sprintf("/api/v1/products/%d%s", id, suffix)
}
