package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/internal/repo"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const defaultCategory = "General"

func categoryFor(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultCategory
	}
	return categoryRepo.GetOrCreate(ctx, name)
}

// CreateProductHandler godoc
// @Summary Create a new product
// @Description Adds a product to the calling vendor's catalog
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param product body ProductRequest true "Product to add"
// @Success 201 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 409 {object} ErrorResponse "Duplicated name"
// @Router /vendor/products [post]
func CreateProductHandler(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid input")
		return
	}

	validationErrors := validateProduct(req)
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	category, err := categoryFor(r.Context(), req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cents, _ := priceToCents(req.Price)
	created, err := productRepo.Create(r.Context(), models.Product{
		VendorID:          vendorID(r),
		CategoryID:        category.ID,
		CategoryName:      category.Name,
		Name:              strings.TrimSpace(req.Name),
		PriceCents:        cents,
		StockQuantity:     req.Quantity,
		LowStockThreshold: req.Threshold,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	created.CategoryName = category.Name

	respond(w, http.StatusCreated, toProductResponse(created))
}

// UpdateProductHandler godoc
// @Summary Update a product's catalog fields
// @Description Changes name, category, price and threshold. Stock changes go through the stock endpoint.
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param product body ProductRequest true "Updated product"
// @Success 200 {object} ProductResponse
// @Failure 400 {array} ProductValidationError
// @Failure 403 {object} ErrorResponse "Not the product owner"
// @Failure 404 {object} ErrorResponse "Not found"
// @Router /vendor/products/{id} [put]
// @Security BearerAuth
func UpdateProductHandler(w http.ResponseWriter, r *http.Request) {
	existing, ok := ownedProduct(w, r)
	if !ok {
		return
	}

	var req ProductRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid input")
		return
	}

	validationErrors := validateProduct(req)
	if len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	category, err := categoryFor(r.Context(), req.Category)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cents, _ := priceToCents(req.Price)
	existing.Name = strings.TrimSpace(req.Name)
	existing.CategoryID = category.ID
	existing.CategoryName = category.Name
	existing.PriceCents = cents
	existing.LowStockThreshold = req.Threshold

	updated, err := productRepo.Update(r.Context(), existing)
	if err != nil {
		writeError(w, r, err)
		return
	}
	updated.CategoryName = category.Name
	invalidateProducts(r, updated.ID)

	respond(w, http.StatusOK, toProductResponse(updated))
}

// GetProductsHandler godoc
// @Summary List products
// @Tags products
// @Produce json
// @Success 200 {array} ProductResponse
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /products [get]
func GetProductsHandler(w http.ResponseWriter, r *http.Request) {
	products, _, err := productRepo.Filter(r.Context(), repo.ProductFilter{})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response := make([]ProductResponse, len(products))
	for i, p := range products {
		response[i] = toProductResponse(p)
	}
	respond(w, http.StatusOK, response)
}

// GetProductByIDHandler godoc
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} ProductResponse
// @Failure 400 {object} ErrorResponse "Invalid ID"
// @Failure 404 {object} ErrorResponse "Not found"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /products/{id} [get]
func GetProductByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		badRequest(w, "invalid product ID")
		return
	}

	p, version, ok := productCache.GetProduct(r.Context(), id)
	if ok {
		respond(w, http.StatusOK, toProductResponse(p))
		return
	}

	product, err := productRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	productCache.SetProduct(r.Context(), product, version)

	respond(w, http.StatusOK, toProductResponse(product))
}

func parsePricePtr(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	shifted := d.Shift(2).Round(0)
	if shifted.Abs().GreaterThan(maxCents) {
		return nil, e.ErrInvalidPrice
	}
	cents := shifted.IntPart()
	return &cents, nil
}

func parseInt64Ptr(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// FilterProductsHandler godoc
// @Summary Filter and paginate products
// @Tags products
// @Produce json
// @Param name query string false "Filter by name"
// @Param vendorId query int false "Filter by vendor"
// @Param categoryId query int false "Filter by category"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Param minQty query int false "Minimum stock"
// @Param maxQty query int false "Maximum stock"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination"
// @Success 200 {object} ProductsSearchResult
// @Failure 400 {object} ErrorResponse "Invalid query"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /products/search [get]
func FilterProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repo.ProductFilter{Name: q.Get("name")}

	var err, perr error
	filter.VendorID, perr = parseInt64Ptr(q.Get("vendorId"))
	err = multierr.Append(err, perr)
	filter.CategoryID, perr = parseInt64Ptr(q.Get("categoryId"))
	err = multierr.Append(err, perr)
	filter.MinPrice, perr = parsePricePtr(q.Get("minPrice"))
	err = multierr.Append(err, perr)
	filter.MaxPrice, perr = parsePricePtr(q.Get("maxPrice"))
	err = multierr.Append(err, perr)
	filter.MinQty, perr = parseIntParam(q.Get("minQty"))
	err = multierr.Append(err, perr)
	filter.MaxQty, perr = parseIntParam(q.Get("maxQty"))
	err = multierr.Append(err, perr)
	filter.Offset, perr = parseIntParam(q.Get("offset"))
	err = multierr.Append(err, perr)
	filter.Limit, perr = parseIntParam(q.Get("limit"))
	err = multierr.Append(err, perr)
	if err != nil {
		badRequest(w, "invalid query")
		return
	}

	if filter.Limit != nil && *filter.Limit <= 0 {
		badRequest(w, "limit must be greater than zero")
		return
	}
	if filter.Offset != nil && *filter.Offset < 0 {
		badRequest(w, "offset must be zero or positive")
		return
	}

	products, total, err := productRepo.Filter(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := ProductsSearchResult{
		Data: make([]ProductResponse, len(products)),
		Meta: Meta{TotalCount: total},
	}
	for i, p := range products {
		resp.Data[i] = toProductResponse(p)
	}
	respond(w, http.StatusOK, resp)
}

// GetCategoriesHandler godoc
// @Summary List categories with their icon keys
// @Tags products
// @Produce json
// @Success 200 {array} models.Category
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /categories [get]
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := categoryRepo.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, categories)
}

func invalidateProducts(r *http.Request, ids ...int64) {
	if err := productCache.DeleteProducts(r.Context(), ids); err != nil {
		log.Warn("failed to invalidate product cache", zap.Int64s("product_ids", ids), zap.Error(err))
	}
}
