package checkout

import (
	"context"
	"time"

	"github.com/freshmart/storefront/internal/catalog"
	"github.com/freshmart/storefront/internal/orders"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransitPriceCents is the flat delivery fee added to every order. A real
// shipping subsystem would price this per order.
const TransitPriceCents = 1000

type Receipt struct {
	OrderID         string
	TotalCount      int64
	TotalPriceCents int64
	Lines           []reservedLine
}

func (r Receipt) TotalPayCents() int64 { return r.TotalPriceCents + TransitPriceCents }

// Repo owns the commit unit: order header, order lines and ledger decrements
// change together inside one transaction or not at all.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Commit(ctx context.Context, userID, addressID int64, payMethod orders.PayMethod, skuIDs []int64, carts QuantityReader) (Receipt, error) {
	orderID := NewOrderID(time.Now(), userID)

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return Receipt{}, err
	}
	defer tx.Rollback(ctx)

	// The placeholder header opens the commit unit; totals are finalized once
	// every line is reserved.
	if _, err := tx.Exec(ctx, `
		INSERT INTO orders(order_id, user_id, address_id, pay_method,
			total_count, total_price_cents, transit_price_cents, status)
		VALUES ($1,$2,$3,$4,0,0,$5,$6)`,
		orderID, userID, addressID, payMethod, int64(TransitPriceCents), orders.StatusAwaitingPayment); err != nil {
		return Receipt{}, err
	}

	lines, err := reserveAll(ctx, catalog.LedgerWithTx(tx), carts, userID, skuIDs)
	if err != nil {
		return Receipt{}, err
	}

	var totalCount, totalPrice int64
	for _, ln := range lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, sku_id, quantity, unit_price_cents)
			VALUES ($1,$2,$3,$4)`,
			orderID, ln.SKUID, ln.Quantity, ln.UnitPriceCents); err != nil {
			return Receipt{}, err
		}
		totalCount += ln.Quantity
		totalPrice += ln.Quantity * ln.UnitPriceCents
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET total_count=$2, total_price_cents=$3 WHERE order_id=$1`,
		orderID, totalCount, totalPrice); err != nil {
		return Receipt{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Receipt{}, err
	}
	return Receipt{OrderID: orderID, TotalCount: totalCount, TotalPriceCents: totalPrice, Lines: lines}, nil
}
