package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/freshmart/storefront/internal/address"
	"github.com/freshmart/storefront/internal/cart"
	"github.com/freshmart/storefront/internal/catalog"
	"github.com/freshmart/storefront/internal/checkout"
	"github.com/freshmart/storefront/internal/logging"
	"github.com/freshmart/storefront/internal/orders"
	"github.com/freshmart/storefront/internal/payment"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, reason := codeOf(err)
	if status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).Error("request failed", "err", err)
	}
	writeJSON(w, status, errBody{Reason: reason, Message: err.Error()})
}

// codeOf maps domain errors onto HTTP status plus a machine-readable reason;
// every abort the caller sees carries one.
func codeOf(err error) (int, string) {
	switch {
	case errors.Is(err, checkout.ErrInvalidInput),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, catalog.ErrInvalidSKU):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, checkout.ErrAddressNotFound),
		errors.Is(err, address.ErrAddressNotFound),
		errors.Is(err, catalog.ErrSKUNotFound),
		errors.Is(err, orders.ErrOrderNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, checkout.ErrInsufficientStock),
		errors.Is(err, cart.ErrStockExceeded):
		return http.StatusConflict, "insufficient_stock"
	case errors.Is(err, checkout.ErrConcurrencyExhausted):
		return http.StatusConflict, "concurrency_exhausted"
	case errors.Is(err, orders.ErrBadStatus):
		return http.StatusConflict, "bad_order_status"
	case errors.Is(err, payment.ErrProviderUnavailable):
		return http.StatusServiceUnavailable, "payment_provider_unavailable"
	case errors.Is(err, payment.ErrPaymentFailed):
		return http.StatusPaymentRequired, "payment_failed"
	case errors.Is(err, payment.ErrStillPending):
		return http.StatusAccepted, "payment_pending"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// userID reads the authenticated user from the X-User-ID header set by the
// auth gateway; session handling lives outside this service.
func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func pathID(r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
