package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/freshmart/storefront/internal/catalog"
)

// maxAttempts bounds the per-SKU optimistic retry loop so hot-SKU contention
// cannot spin forever.
const maxAttempts = 3

// ledger is the slice of the commit transaction the reservation loop needs.
// In production it is the catalog ledger bound to the open transaction; tests
// substitute an in-memory implementation.
type ledger interface {
	ReadSKU(ctx context.Context, skuID int64) (catalog.Quote, error)
	DecrementStock(ctx context.Context, skuID, expectedStock, qty int64) (bool, error)
}

// QuantityReader resolves the requested quantity for one cart line.
// Implemented by the cart store.
type QuantityReader interface {
	Get(ctx context.Context, userID, skuID int64) (int64, bool, error)
}

type reservedLine struct {
	SKUID          int64
	Quantity       int64
	UnitPriceCents int64
}

// reserveAll runs the optimistic reservation protocol for every requested
// SKU: read stock, verify the cart quantity fits, then compare-and-swap the
// decrement against the stock value just read. A lost CAS re-reads and
// retries up to maxAttempts; any abort error means the caller must roll back
// the enclosing transaction, leaving no partial reservation visible.
func reserveAll(ctx context.Context, led ledger, carts QuantityReader, userID int64, skuIDs []int64) ([]reservedLine, error) {
	lines := make([]reservedLine, 0, len(skuIDs))

	for _, skuID := range skuIDs {
		var line reservedLine
		reserved := false

		for attempt := 1; attempt <= maxAttempts; attempt++ {
			quote, err := led.ReadSKU(ctx, skuID)
			if errors.Is(err, catalog.ErrSKUNotFound) {
				return nil, fmt.Errorf("sku %d: %w", skuID, err)
			}
			if err != nil {
				return nil, err
			}

			qty, ok, err := carts.Get(ctx, userID, skuID)
			if err != nil {
				return nil, err
			}
			if !ok || qty <= 0 {
				return nil, fmt.Errorf("sku %d not in cart: %w", skuID, ErrInvalidInput)
			}

			if qty > quote.Stock {
				return nil, fmt.Errorf("sku %d: need %d, have %d: %w",
					skuID, qty, quote.Stock, ErrInsufficientStock)
			}

			applied, err := led.DecrementStock(ctx, skuID, quote.Stock, qty)
			if err != nil {
				return nil, err
			}
			if !applied {
				// a racing checkout moved the stock first; re-read and retry
				continue
			}

			line = reservedLine{SKUID: skuID, Quantity: qty, UnitPriceCents: quote.PriceCents}
			reserved = true
			break
		}

		if !reserved {
			return nil, fmt.Errorf("sku %d: %w", skuID, ErrConcurrencyExhausted)
		}
		lines = append(lines, line)
	}

	return lines, nil
}
