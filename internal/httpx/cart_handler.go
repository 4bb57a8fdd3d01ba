package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/freshmart/storefront/internal/cart"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	Cart *cart.Store
}

func (h *CartHandler) Register(r *chi.Mux) {
	r.Post("/cart", h.add)
	r.Put("/cart", h.update)
	r.Get("/cart", h.list)
	r.Get("/cart/count", h.count)
	r.Delete("/cart/{sku}", h.remove)
}

type cartLineReq struct {
	SKUID    int64 `json:"sku_id"`
	Quantity int64 `json:"quantity"`
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	newQty, err := h.Cart.Add(ctx, uid, req.SKUID, req.Quantity)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := h.Cart.CountItems(ctx, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"quantity": newQty, "cart_items": items})
}

func (h *CartHandler) update(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	var req cartLineReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Cart.Set(ctx, uid, req.SKUID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	total, err := h.Cart.TotalQuantity(ctx, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_quantity": total})
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	lines, err := h.Cart.GetAll(ctx, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lines": lines})
}

func (h *CartHandler) count(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, err := h.Cart.CountItems(ctx, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"cart_items": items})
}

func (h *CartHandler) remove(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	skuID, ok := pathID(r, "sku")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "bad sku id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Cart.Remove(ctx, uid, skuID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
