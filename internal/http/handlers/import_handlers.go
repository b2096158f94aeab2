package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/shopspring/decimal"
)

type csvRow struct {
	Name      string
	Category  string
	Price     decimal.Decimal
	Quantity  int
	Threshold int
}

var requiredColumns = []string{"name", "price", "quantity"}

func parseCSV(file io.Reader) ([]csvRow, []error, error) {
	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return nil, nil, errors.New("invalid CSV header")
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", col)
		}
	}

	field := func(record []string, col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []csvRow
	var rowErrs []error
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("CSV read error: %v", err)
		}

		row := csvRow{Name: field(record, "name"), Category: field(record, "category")}
		row.Price, err = decimal.NewFromString(field(record, "price"))
		if err != nil {
			rowErrs = append(rowErrs, errors.New("invalid price"))
			rows = append(rows, csvRow{})
			continue
		}
		if row.Quantity, err = strconv.Atoi(field(record, "quantity")); err != nil {
			rowErrs = append(rowErrs, errors.New("invalid quantity"))
			rows = append(rows, csvRow{})
			continue
		}
		if s := field(record, "threshold"); s != "" {
			if row.Threshold, err = strconv.Atoi(s); err != nil {
				rowErrs = append(rowErrs, errors.New("invalid threshold"))
				rows = append(rows, csvRow{})
				continue
			}
		}
		rows = append(rows, row)
		rowErrs = append(rowErrs, nil)
	}
	return rows, rowErrs, nil
}

func validateRow(r csvRow) error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("missing name")
	}
	if _, err := priceToCents(r.Price); err != nil {
		return err
	}
	if r.Quantity < 0 || r.Quantity > models.MaxQuantity {
		return errors.New("invalid quantity")
	}
	if r.Threshold < 0 || r.Threshold > models.MaxQuantity {
		return errors.New("invalid threshold")
	}
	return nil
}

// ImportProductsHandler godoc
// @Summary Import products via CSV
// @Description Columns: name, category, price, quantity, threshold. In update mode an existing product takes the row's catalog fields and the row's quantity is added to its stock as a restock.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Param mode query string false "Import mode (skip|update)"
// @Success 200 {object} ImportProductsResult
// @Failure 400 {object} ErrorResponse "Invalid file"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /vendor/products/import [post]
// @Security BearerAuth
func ImportProductsHandler(w http.ResponseWriter, r *http.Request) {
	mode := strings.ToLower(r.URL.Query().Get("mode"))
	if mode != "update" {
		mode = "skip" // default
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		badRequest(w, "missing file")
		return
	}
	defer file.Close()

	records, parseErrs, err := parseCSV(file)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	vendor := vendorID(r)
	var imported int
	errorsList := []ProductValidationError{}
	fail := func(rowNum int, format string, args ...any) {
		errorsList = append(errorsList, ProductValidationError{
			Field:       fmt.Sprintf("row %d", rowNum),
			Description: fmt.Sprintf(format, args...),
		})
	}

	for i, rec := range records {
		rowNum := i + 2 // header is row 1

		if parseErrs[i] != nil {
			fail(rowNum, "%v", parseErrs[i])
			continue
		}
		if err := validateRow(rec); err != nil {
			fail(rowNum, "%v", err)
			continue
		}

		category, err := categoryFor(ctx, rec.Category)
		if err != nil {
			fail(rowNum, "could not resolve category '%s'", rec.Category)
			continue
		}
		cents, _ := priceToCents(rec.Price)

		existing, err := productRepo.GetByName(ctx, vendor, rec.Name)
		if err != nil && !errors.Is(err, e.ErrProductNotFound) {
			fail(rowNum, "failed to look up '%s'", rec.Name)
			continue
		}

		if err == nil {
			if mode == "skip" {
				fail(rowNum, "product '%s' already exists", rec.Name)
				continue
			}
			existing.CategoryID = category.ID
			existing.CategoryName = category.Name
			existing.PriceCents = cents
			existing.LowStockThreshold = rec.Threshold
			if _, err := productRepo.Update(ctx, existing); err != nil {
				fail(rowNum, "failed to update '%s'", rec.Name)
				continue
			}
			if rec.Quantity > 0 {
				if _, err := stockService.Adjust(ctx, vendor, existing.ID, rec.Quantity); err != nil {
					fail(rowNum, "failed to restock '%s'", rec.Name)
					continue
				}
			} else {
				invalidateProducts(r, existing.ID)
			}
			imported++
			continue
		}

		_, err = productRepo.Create(ctx, models.Product{
			VendorID:          vendor,
			CategoryID:        category.ID,
			CategoryName:      category.Name,
			Name:              rec.Name,
			PriceCents:        cents,
			StockQuantity:     rec.Quantity,
			LowStockThreshold: rec.Threshold,
		})
		if err != nil {
			_, msg := ToHTTPResponse(err)
			fail(rowNum, "%s", msg)
			continue
		}
		imported++
	}

	respond(w, http.StatusOK, ImportProductsResult{
		ImportedProductsCount: imported,
		Errors:                errorsList,
	})
}
