package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/fejiro0/gomart/internal/auth"
	"github.com/fejiro0/gomart/pkg/e"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

var errorStatuses = []struct {
	err    error
	status int
}{
	{e.ErrInvalidQuantity, http.StatusBadRequest},
	{e.ErrInvalidDelta, http.StatusBadRequest},
	{e.ErrInvalidSession, http.StatusBadRequest},
	{e.ErrInvalidPrice, http.StatusBadRequest},
	{e.ErrPricePrecision, http.StatusBadRequest},
	{e.ErrMissingFields, http.StatusBadRequest},
	{e.ErrInvalidEmail, http.StatusBadRequest},
	{e.ErrWeakPassword, http.StatusBadRequest},
	{e.ErrCartEmpty, http.StatusBadRequest},
	{e.ErrStockLimit, http.StatusBadRequest},
	{e.ErrInsufficientStock, http.StatusConflict},
	{e.ErrInvalidCredentials, http.StatusUnauthorized},
	{auth.ErrInvalidToken, http.StatusUnauthorized},
	{e.ErrForbidden, http.StatusForbidden},
	{e.ErrVendorInactive, http.StatusForbidden},
	{e.ErrProductNotFound, http.StatusNotFound},
	{e.ErrReservationNotFound, http.StatusNotFound},
	{e.ErrVendorNotFound, http.StatusNotFound},
	{e.ErrDuplicatedValue, http.StatusConflict},
	{e.ErrTooManyAttempts, http.StatusTooManyRequests},
}

// ToHTTPResponse maps err to a status code and a message safe to show the
// client. Unknown errors become a 500 with a generic message.
func ToHTTPResponse(err error) (int, string) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.err) {
			return es.status, es.err.Error()
		}
	}
	return http.StatusInternalServerError, e.ErrInternalServerError.Error()
}

// writeError answers with the mapped error. Server errors are logged with
// the full chain.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := ToHTTPResponse(err)
	writeStatusError(w, r, status, msg, err)
}

func writeStatusError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	}
	if werr := writeJSON(w, status, ErrorResponse{Error: msg}); werr != nil {
		log.Warn("failed to write error response", zap.Error(werr))
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	_ = writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

func vendorID(r *http.Request) int64 {
	id, _ := auth.VendorIDFromContext(r.Context())
	return id
}

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1048576 // one megabyte
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) error {
	out, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(out)
	if err != nil {
		return fmt.Errorf("failed to write to response: %w", err)
	}

	return nil
}

func respond(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		log.Warn("failed to write JSON response", zap.Error(err))
	}
}
