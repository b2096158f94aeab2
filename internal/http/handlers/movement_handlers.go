package handlers

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/fejiro0/gomart/pkg/e"
	"go.uber.org/zap"
)

// AdjustStockHandler godoc
// @Summary Restock or write off units of a product
// @Description Applies a signed quantity change to a product owned by the calling vendor. Stock never goes below zero.
// @Tags inventory
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param adjustment body StockAdjustmentRequest true "Quantity change"
// @Success 200 {object} StockAdjustmentResponse
// @Failure 400 {object} ErrorResponse "Invalid change or insufficient stock"
// @Failure 403 {object} ErrorResponse "Not the product owner"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /products/{id}/stock [patch]
// @Security BearerAuth
func AdjustStockHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid product ID")
		return
	}

	var req StockAdjustmentRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid input")
		return
	}
	if req.QuantityChange == nil {
		writeError(w, r, e.ErrMissingFields)
		return
	}

	change, err := stockService.Adjust(r.Context(), vendorID(r), id, *req.QuantityChange)
	if err != nil {
		// A stock change the vendor asked for is a bad request, not a conflict.
		if errors.Is(err, e.ErrInsufficientStock) {
			writeStatusError(w, r, http.StatusBadRequest, e.ErrInsufficientStock.Error(), err)
			return
		}
		writeError(w, r, err)
		return
	}

	respond(w, http.StatusOK, StockAdjustmentResponse{
		ProductID:     change.ProductID,
		PreviousStock: change.Previous,
		NewStock:      change.Current,
	})
}

// parseTimestamp reverses the query decoding of "+" into a space in RFC3339
// offsets, e.g. 2025-07-03T17:44:03 02:00.
func parseTimestamp(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if len(s) == len(time.RFC3339) && s[len(s)-6] == ' ' {
		s = s[:len(s)-6] + "+" + s[len(s)-5:]
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func parseIntParam(s string) (*int, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ownedProduct loads the product and checks that the calling vendor owns it.
func ownedProduct(w http.ResponseWriter, r *http.Request) (models.Product, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid product ID")
		return models.Product{}, false
	}

	p, err := productRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return models.Product{}, false
	}
	if p.VendorID != vendorID(r) {
		writeError(w, r, e.ErrForbidden)
		return models.Product{}, false
	}
	return p, true
}

func movementFilter(w http.ResponseWriter, r *http.Request) (repo.MovementFilter, bool) {
	q := r.URL.Query()
	var mf repo.MovementFilter
	var err error

	if mf.Since, err = parseTimestamp(q.Get("since")); err != nil {
		badRequest(w, "invalid since date format")
		return mf, false
	}
	if mf.Until, err = parseTimestamp(q.Get("until")); err != nil {
		badRequest(w, "invalid until date format")
		return mf, false
	}
	if mf.Limit, err = parseIntParam(q.Get("limit")); err != nil {
		badRequest(w, "invalid limit format")
		return mf, false
	}
	if mf.Limit != nil && *mf.Limit <= 0 {
		badRequest(w, "limit must be greater than zero")
		return mf, false
	}
	if mf.Offset, err = parseIntParam(q.Get("offset")); err != nil {
		badRequest(w, "invalid offset format")
		return mf, false
	}
	if mf.Offset != nil && *mf.Offset < 0 {
		badRequest(w, "offset must be zero or positive")
		return mf, false
	}
	return mf, true
}

// GetMovementsHandler godoc
// @Summary Get the stock movement ledger of a product
// @Tags movements
// @Produce json
// @Param id path int true "Product ID"
// @Param since query string false "Filter movements from this timestamp (RFC3339)"
// @Param until query string false "Filter movements until this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} MovementsSearchResult
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Not the product owner"
// @Failure 404 {object} ErrorResponse "Product not found"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /vendor/products/{id}/movements [get]
// @Security BearerAuth
func GetMovementsHandler(w http.ResponseWriter, r *http.Request) {
	p, ok := ownedProduct(w, r)
	if !ok {
		return
	}
	mf, ok := movementFilter(w, r)
	if !ok {
		return
	}

	movements, total, err := movementRepo.GetByProductID(r.Context(), p.ID, mf)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := MovementsSearchResult{
		Data: make([]MovementResponse, len(movements)),
		Meta: Meta{TotalCount: total},
	}
	for i, m := range movements {
		response.Data[i] = toMovementResponse(m)
	}
	respond(w, http.StatusOK, response)
}

// ExportMovementsHandler godoc
// @Summary Export the stock movement ledger of a product
// @Tags movements
// @Produce text/csv,application/json
// @Param id path int true "Product ID"
// @Param format query string true "Export format (csv or json)"
// @Param since query string false "Filter from timestamp (RFC3339)"
// @Param until query string false "Filter until timestamp (RFC3339)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /vendor/products/{id}/movements/export [get]
// @Security BearerAuth
func ExportMovementsHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "csv" && format != "json" {
		badRequest(w, "format must be 'csv' or 'json'")
		return
	}

	p, ok := ownedProduct(w, r)
	if !ok {
		return
	}
	mf, ok := movementFilter(w, r)
	if !ok {
		return
	}

	var all []models.Movement
	offset, limit := 0, 100
	for {
		mf.Offset, mf.Limit = &offset, &limit
		page, total, err := movementRepo.GetByProductID(r.Context(), p.ID, mf)
		if err != nil {
			writeError(w, r, err)
			return
		}
		all = append(all, page...)
		offset += len(page)
		if len(page) == 0 || offset >= total {
			break
		}
	}

	switch format {
	case "json":
		data := make([]MovementResponse, len(all))
		for i, m := range all {
			data[i] = toMovementResponse(m)
		}
		w.Header().Set("Content-Disposition", `attachment; filename="movements.json"`)
		respond(w, http.StatusOK, data)

	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="movements.csv"`)

		csvWriter := csv.NewWriter(w)
		_ = csvWriter.Write([]string{"id", "product_id", "delta", "reason", "session_id", "created_at"})
		for _, m := range all {
			_ = csvWriter.Write([]string{
				strconv.FormatInt(m.ID, 10),
				strconv.FormatInt(m.ProductID, 10),
				strconv.Itoa(m.Delta),
				string(m.Reason),
				m.SessionID,
				m.CreatedAt.Format(time.RFC3339),
			})
		}
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			log.Warn("failed to write movements csv", zap.Int64("product_id", p.ID), zap.Error(err))
		}
	}
}
