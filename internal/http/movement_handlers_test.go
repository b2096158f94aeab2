package http_test

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"testing"

	handler "github.com/fejiro0/gomart/internal/http/handlers"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func change(n int) handler.StockAdjustmentRequest {
	return handler.StockAdjustmentRequest{QuantityChange: &n}
}

func TestAdjustStockHandler(t *testing.T) {
	a := newTestAPI(t)
	created := a.createProduct(t, handler.ProductRequest{Name: "InventoryItem", Price: decimal.NewFromInt(10), Quantity: 10, Threshold: 5})

	t.Run("Increase quantity", func(t *testing.T) {
		w := a.vendorRequest(http.MethodPatch, productPath(created.ID, "/stock"), change(5))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, handler.StockAdjustmentResponse{ProductID: created.ID, PreviousStock: 10, NewStock: 15}, decode[handler.StockAdjustmentResponse](t, w))
	})

	t.Run("Decrease quantity", func(t *testing.T) {
		w := a.vendorRequest(http.MethodPatch, productPath(created.ID, "/stock"), change(-12))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, decode[handler.StockAdjustmentResponse](t, w).NewStock)
	})

	t.Run("Too much decrease", func(t *testing.T) {
		w := a.vendorRequest(http.MethodPatch, productPath(created.ID, "/stock"), change(-100))
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "insufficient stock", decode[handler.ErrorResponse](t, w).Error)
		assert.Equal(t, 3, a.stock(t, created.ID))
	})

	t.Run("Zero or missing change", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, a.vendorRequest(http.MethodPatch, productPath(created.ID, "/stock"), change(0)).Code)
		assert.Equal(t, http.StatusBadRequest, a.vendorRequest(http.MethodPatch, productPath(created.ID, "/stock"), map[string]any{}).Code)
	})

	t.Run("Not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, a.vendorRequest(http.MethodPatch, productPath(9999, "/stock"), change(1)).Code)
	})

	t.Run("Other vendor", func(t *testing.T) {
		other := a.registerVendor(t)
		assert.Equal(t, http.StatusForbidden, a.vendorRequestAs(other, http.MethodPatch, productPath(created.ID, "/stock"), change(1)).Code)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, a.vendorRequest(http.MethodPatch, "/api/v1/products/abc/stock", change(1)).Code)
	})
}

func TestGetMovementsHandler(t *testing.T) {
	a := newTestAPI(t)
	created := a.createProduct(t, handler.ProductRequest{Name: "Logged", Price: decimal.NewFromInt(3), Quantity: 10})

	for _, n := range []int{5, -2, 4} {
		require.Equal(t, http.StatusOK, a.vendorRequest(http.MethodPatch, productPath(created.ID, "/stock"), change(n)).Code)
	}
	path := "/api/v1/vendor/products/" + itoa(created.ID) + "/movements"

	w := a.vendorRequest(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handler.MovementsSearchResult](t, w)
	assert.Equal(t, 3, resp.Meta.TotalCount)
	require.Len(t, resp.Data, 3)
	assert.Equal(t, 4, resp.Data[0].Delta, "newest first")
	assert.Equal(t, "restock", resp.Data[0].Reason)

	w = a.vendorRequest(http.MethodGet, path+"?limit=1&offset=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handler.MovementsSearchResult](t, w)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, -2, resp.Data[0].Delta)

	for _, q := range []string{"?limit=0", "?offset=-1", "?since=yesterday", "?limit=x"} {
		assert.Equal(t, http.StatusBadRequest, a.vendorRequest(http.MethodGet, path+q, nil).Code, q)
	}

	other := a.registerVendor(t)
	assert.Equal(t, http.StatusForbidden, a.vendorRequestAs(other, http.MethodGet, path, nil).Code)
}

func TestExportMovementsHandler(t *testing.T) {
	a := newTestAPI(t)
	created := a.createProduct(t, handler.ProductRequest{Name: "Exported", Price: decimal.NewFromInt(3), Quantity: 10})
	require.Equal(t, http.StatusOK, a.vendorRequest(http.MethodPatch, productPath(created.ID, "/stock"), change(2)).Code)

	path := "/api/v1/vendor/products/" + itoa(created.ID) + "/movements/export"

	w := a.vendorRequest(http.MethodGet, path+"?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"id", "product_id", "delta", "reason", "session_id", "created_at"}, records[0])
	assert.Equal(t, "2", records[1][2])

	w = a.vendorRequest(http.MethodGet, path+"?format=json", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]handler.MovementResponse](t, w), 1)

	assert.Equal(t, http.StatusBadRequest, a.vendorRequest(http.MethodGet, path+"?format=xml", nil).Code)
}

func TestDashboardHandler(t *testing.T) {
	a := newTestAPI(t)
	p := a.createProduct(t, handler.ProductRequest{Name: "Counted", Price: decimal.NewFromInt(2), Quantity: 10, Threshold: 3})
	a.createProduct(t, handler.ProductRequest{Name: "Low", Price: decimal.NewFromInt(2), Quantity: 1, Threshold: 3})

	session := "3b241101-e2bb-4255-8caf-4136c566a962"
	require.Equal(t, http.StatusOK, a.cartRequest(session, http.MethodPost, "/api/v1/cart/items", handler.CartItemRequest{ProductID: p.ID, Quantity: 4}).Code)

	w := a.vendorRequest(http.MethodGet, "/api/v1/vendor/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)

	m := decode[repo.Metrics](t, w)
	assert.Equal(t, 2, m.TotalProducts)
	assert.Equal(t, 1, m.LowStockCount)
	assert.Equal(t, 4, m.UnitsReserved)
	assert.Equal(t, 7, m.UnitsInStock)
}
