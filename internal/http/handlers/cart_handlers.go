package handlers

import (
	"errors"
	"net/http"

	"github.com/fejiro0/gomart/internal/cart"
	"github.com/fejiro0/gomart/internal/http/middleware"
	"github.com/fejiro0/gomart/internal/models"
	"github.com/fejiro0/gomart/pkg/e"
	"go.uber.org/multierr"
)

// GetCartHandler godoc
// @Summary Get the cart of the current session
// @Tags cart
// @Produce json
// @Param X-Cart-Session header string false "Cart session id"
// @Success 200 {object} CartResponse
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /cart [get]
func GetCartHandler(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == "" {
		respond(w, http.StatusOK, toCartResponse(models.NewCart("", nil)))
		return
	}

	c, err := cartService.GetCart(r.Context(), session)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toCartResponse(c))
}

// AddCartItemHandler godoc
// @Summary Reserve units of a product in the cart
// @Tags cart
// @Accept json
// @Produce json
// @Param X-Cart-Session header string false "Cart session id, issued when missing"
// @Param item body CartItemRequest true "Product and quantity"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse "Invalid quantity"
// @Failure 404 {object} ErrorResponse "Product not found"
// @Failure 409 {object} ErrorResponse "Insufficient stock"
// @Router /cart/items [post]
func AddCartItemHandler(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid input")
		return
	}

	c, err := cartService.AddToCart(r.Context(), middleware.SessionFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toCartResponse(c))
}

// UpdateCartItemHandler godoc
// @Summary Change the quantity of a cart line
// @Tags cart
// @Accept json
// @Produce json
// @Param productId path int true "Product ID"
// @Param change body CartDeltaRequest true "Signed quantity change"
// @Success 200 {object} CartResponse
// @Failure 400 {object} ErrorResponse "Invalid change"
// @Failure 404 {object} ErrorResponse "Item not in cart"
// @Failure 409 {object} ErrorResponse "Insufficient stock"
// @Router /cart/items/{productId} [patch]
func UpdateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		badRequest(w, "invalid product ID")
		return
	}

	var req CartDeltaRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequest(w, "invalid input")
		return
	}

	session := middleware.SessionFromContext(r.Context())
	if session == "" {
		writeError(w, r, e.ErrReservationNotFound)
		return
	}

	c, err := cartService.UpdateCartQuantity(r.Context(), session, productID, req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toCartResponse(c))
}

// RemoveCartItemHandler godoc
// @Summary Remove a line from the cart and return its units to stock
// @Tags cart
// @Produce json
// @Param productId path int true "Product ID"
// @Success 200 {object} CartResponse
// @Failure 404 {object} ErrorResponse "Item not in cart"
// @Router /cart/items/{productId} [delete]
func RemoveCartItemHandler(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		badRequest(w, "invalid product ID")
		return
	}

	session := middleware.SessionFromContext(r.Context())
	if session == "" {
		writeError(w, r, e.ErrReservationNotFound)
		return
	}

	c, err := cartService.RemoveFromCart(r.Context(), session, productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toCartResponse(c))
}

// ClearCartHandler godoc
// @Summary Release every line of the cart
// @Description Each line is released on its own. Lines that fail are listed and stay in the cart.
// @Tags cart
// @Produce json
// @Success 204 "Cart cleared"
// @Failure 207 {object} ClearCartErrors "Some lines could not be released"
// @Router /cart [delete]
func ClearCartHandler(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	err := cartService.ClearCart(r.Context(), session)
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var resp ClearCartErrors
	for _, lineErr := range multierr.Errors(err) {
		var le *cart.LineError
		if !errors.As(lineErr, &le) {
			writeError(w, r, err)
			return
		}
		_, msg := ToHTTPResponse(le.Err)
		resp.Errors = append(resp.Errors, le.ProductName+": "+msg)
	}
	respond(w, http.StatusMultiStatus, resp)
}

// CheckoutHandler godoc
// @Summary Turn the cart into an order
// @Tags cart
// @Produce json
// @Success 201 {object} OrderResponse
// @Failure 400 {object} ErrorResponse "Cart is empty"
// @Router /cart/checkout [post]
func CheckoutHandler(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == "" {
		writeError(w, r, e.ErrCartEmpty)
		return
	}

	order, err := cartService.Checkout(r.Context(), session)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toOrderResponse(order))
}
