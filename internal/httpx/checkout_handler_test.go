package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/freshmart/storefront/internal/checkout"
	"github.com/freshmart/storefront/internal/orders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCart struct{}

func (stubCart) Get(context.Context, int64, int64) (int64, bool, error) { return 1, true, nil }
func (stubCart) RemoveMany(context.Context, int64, []int64) error       { return nil }

type stubAddresses struct{ ok bool }

func (s stubAddresses) BelongsTo(context.Context, int64, int64) (bool, error) { return s.ok, nil }

type stubCommitter struct {
	receipt checkout.Receipt
	err     error
}

func (s stubCommitter) Commit(context.Context, int64, int64, orders.PayMethod, []int64, checkout.QuantityReader) (checkout.Receipt, error) {
	return s.receipt, s.err
}

func newCheckoutRouter(committer checkout.Committer, addrOK bool) http.Handler {
	svc := &checkout.Service{
		Cart:      stubCart{},
		Addresses: stubAddresses{ok: addrOK},
		Repo:      committer,
	}
	r := NewRouter(nil)
	(&CheckoutHandler{Svc: svc}).Register(r)
	return r
}

func doCheckout(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(body))
	req.Header.Set("X-User-ID", "7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutHandler_Committed(t *testing.T) {
	t.Parallel()

	h := newCheckoutRouter(stubCommitter{
		receipt: checkout.Receipt{OrderID: "ord-1", TotalPriceCents: 900},
	}, true)

	rec := doCheckout(t, h, `{"address_id":10,"pay_method":3,"sku_ids":[1,2]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "committed", resp["status"])
	assert.Equal(t, "ord-1", resp["order_id"])
	assert.EqualValues(t, 900+checkout.TransitPriceCents, resp["total_pay_cents"])
}

func TestCheckoutHandler_AbortReasons(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		committer  checkout.Committer
		addrOK     bool
		body       string
		wantStatus int
		wantReason string
	}{
		{
			name:       "insufficient stock",
			committer:  stubCommitter{err: checkout.ErrInsufficientStock},
			addrOK:     true,
			body:       `{"address_id":10,"pay_method":3,"sku_ids":[1]}`,
			wantStatus: http.StatusConflict,
			wantReason: "insufficient_stock",
		},
		{
			name:       "contention exhausted",
			committer:  stubCommitter{err: checkout.ErrConcurrencyExhausted},
			addrOK:     true,
			body:       `{"address_id":10,"pay_method":3,"sku_ids":[1]}`,
			wantStatus: http.StatusConflict,
			wantReason: "concurrency_exhausted",
		},
		{
			name:       "foreign address",
			committer:  stubCommitter{},
			addrOK:     false,
			body:       `{"address_id":10,"pay_method":3,"sku_ids":[1]}`,
			wantStatus: http.StatusNotFound,
			wantReason: "not_found",
		},
		{
			name:       "bad pay method",
			committer:  stubCommitter{},
			addrOK:     true,
			body:       `{"address_id":10,"pay_method":9,"sku_ids":[1]}`,
			wantStatus: http.StatusBadRequest,
			wantReason: "invalid_input",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := doCheckout(t, newCheckoutRouter(tt.committer, tt.addrOK), tt.body)
			require.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "aborted", resp["status"])
			assert.Equal(t, tt.wantReason, resp["reason"])
		})
	}
}

func TestCheckoutHandler_MissingUser(t *testing.T) {
	t.Parallel()

	h := newCheckoutRouter(stubCommitter{}, true)
	req := httptest.NewRequest(http.MethodPost, "/checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
