package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/freshmart/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
)

type CatalogHandler struct {
	Ledger *catalog.Ledger
	Cache  *catalog.IndexCache
	Admin  *catalog.Admin
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/index", h.index)
	r.Get("/skus", h.listByType)
	r.Get("/skus/{id}", h.get)
	r.Post("/admin/skus", h.createSKU)
	r.Put("/admin/skus/{id}/price", h.updatePrice)
	r.Post("/admin/skus/{id}/restock", h.restock)
}

func (h *CatalogHandler) index(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	page, err := h.Cache.Get(ctx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) listByType(w http.ResponseWriter, r *http.Request) {
	typeID, err := strconv.ParseInt(r.URL.Query().Get("type"), 10, 64)
	if err != nil || typeID <= 0 {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "missing type"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	skus, err := h.Ledger.ListByType(ctx, typeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"skus": skus})
}

func (h *CatalogHandler) get(w http.ResponseWriter, r *http.Request) {
	skuID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "bad sku id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	sku, err := h.Ledger.Get(ctx, skuID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	// variants of the same product, for the detail page
	variants, err := h.Ledger.SameSPU(ctx, sku.SPUID, sku.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sku": sku, "variants": variants})
}

func (h *CatalogHandler) createSKU(w http.ResponseWriter, r *http.Request) {
	var s catalog.SKU
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := h.Admin.CreateSKU(ctx, s)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *CatalogHandler) updatePrice(w http.ResponseWriter, r *http.Request) {
	skuID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "bad sku id"})
		return
	}
	var req struct {
		PriceCents int64 `json:"price_cents"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Admin.UpdatePrice(ctx, skuID, req.PriceCents); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) restock(w http.ResponseWriter, r *http.Request) {
	skuID, ok := pathID(r, "id")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "bad sku id"})
		return
	}
	var req struct {
		Quantity int64 `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errBody{Reason: "invalid_input", Message: "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.Admin.Restock(ctx, skuID, req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
