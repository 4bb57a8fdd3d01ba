package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/freshmart/storefront/internal/checkout"
	"github.com/freshmart/storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

type CheckoutHandler struct {
	Svc *checkout.Service
}

func (h *CheckoutHandler) Register(r *chi.Mux) {
	r.Post("/checkout", h.placeOrder)
}

type checkoutReq struct {
	AddressID int64   `json:"address_id"`
	PayMethod int16   `json:"pay_method"`
	SKUIDs    []int64 `json:"sku_ids"`
}

type checkoutResp struct {
	Status        string `json:"status"` // committed | aborted
	OrderID       string `json:"order_id,omitempty"`
	TotalPayCents int64  `json:"total_pay_cents,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Message       string `json:"message,omitempty"`
}

func (h *CheckoutHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, checkoutResp{Status: "aborted", Reason: "invalid_input", Message: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	receipt, err := h.Svc.PlaceOrder(ctx, checkout.PlaceOrderInput{
		UserID:    uid,
		AddressID: req.AddressID,
		PayMethod: orders.PayMethod(req.PayMethod),
		SKUIDs:    req.SKUIDs,
	})
	if err != nil {
		status, reason := codeOf(err)
		writeJSON(w, status, checkoutResp{Status: "aborted", Reason: reason, Message: err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResp{
		Status:        "committed",
		OrderID:       receipt.OrderID,
		TotalPayCents: receipt.TotalPayCents(),
	})
}
