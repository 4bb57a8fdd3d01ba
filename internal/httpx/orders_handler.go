package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/freshmart/storefront/internal/orders"
	"github.com/freshmart/storefront/internal/payment"
	"github.com/go-chi/chi/v5"
)

type OrdersHandler struct {
	Repo      *orders.Repo
	Confirmer *payment.Confirmer
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Get("/orders", h.list)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/payment-check", h.paymentCheck)
	r.Post("/orders/{id}/comments", h.comments)
	r.Post("/admin/orders/{id}/status", h.advanceStatus)
}

type advanceStatusReq struct {
	Status int16 `json:"status"`
}

// advanceStatus drives fulfilment transitions (ship, deliver) from the back
// office. Payment and review moves go through their own endpoints.
func (h *OrdersHandler) advanceStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req advanceStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	to := orders.Status(req.Status)
	if err := h.Repo.AdvanceStatus(ctx, orderID, to); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": to.String()})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := h.Repo.ListByUser(ctx, uid, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "missing order id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.GetForUser(ctx, orderID, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) paymentCheck(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	orderID := chi.URLParam(r, "id")

	// the poll is bounded by the confirmer's attempt budget and this deadline
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	tradeNo, err := h.Confirmer.Confirm(ctx, orderID, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paid", "trade_no": tradeNo})
}

type commentsReq struct {
	Comments map[string]string `json:"comments"` // sku_id -> text
}

func (h *OrdersHandler) comments(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	orderID := chi.URLParam(r, "id")

	var req commentsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Comments) == 0 {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "missing comments"})
		return
	}
	comments := make(map[int64]string, len(req.Comments))
	for k, v := range req.Comments {
		skuID, err := strconv.ParseInt(k, 10, 64)
		if err != nil || skuID <= 0 {
			writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "bad sku id: " + k})
			return
		}
		comments[skuID] = v
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.SubmitComments(ctx, orderID, uid, comments); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": orders.StatusCompleted.String()})
}
