package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/freshmart/storefront/internal/address"
	"github.com/go-chi/chi/v5"
)

type AddressHandler struct {
	Repo *address.Repo
}

func (h *AddressHandler) Register(r *chi.Mux) {
	r.Get("/addresses", h.list)
}

func (h *AddressHandler) list(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errBody{Reason: "unauthorized", Message: "missing user"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	addrs, err := h.Repo.ListByUser(ctx, uid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"addresses": addrs})
}
