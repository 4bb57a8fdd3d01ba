package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrBadStatus     = errors.New("order status does not allow this operation")
)

const pageSize = 4

// pageCountFor rounds up; an empty history still has one (empty) page.
func pageCountFor(total int64) int {
	n := int((total + pageSize - 1) / pageSize)
	if n == 0 {
		return 1
	}
	return n
}

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `order_id, user_id, address_id, pay_method, total_count,
	total_price_cents, transit_price_cents, status, COALESCE(trade_no,''), created_at, updated_at`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.OrderID, &o.UserID, &o.AddressID, &o.PayMethod, &o.TotalCount,
		&o.TotalPriceCents, &o.TransitPriceCents, &o.Status, &o.TradeNo, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrOrderNotFound
	}
	return o, err
}

func (r *Repo) Get(ctx context.Context, orderID string) (Order, error) {
	return scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id=$1`, orderID))
}

// GetForUser is Get scoped to the owning user.
func (r *Repo) GetForUser(ctx context.Context, orderID string, userID int64) (Order, error) {
	return scanOrder(r.DB.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id=$1 AND user_id=$2`, orderID, userID))
}

// ListByUser returns one page of the user's order history, newest first,
// with nested lines and per-line subtotals. A page outside the valid range
// falls back to the first page.
func (r *Repo) ListByUser(ctx context.Context, userID int64, page int) (OrderPage, error) {
	var total int64
	if err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id=$1`, userID).Scan(&total); err != nil {
		return OrderPage{}, err
	}

	pageCount := pageCountFor(total)
	if page < 1 || page > pageCount {
		page = 1
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id=$1 ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return OrderPage{}, err
	}
	defer rows.Close()

	var views []OrderView
	var ids []string
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return OrderPage{}, err
		}
		views = append(views, OrderView{
			Order:         o,
			StatusName:    o.Status.String(),
			TotalPayCents: o.TotalPriceCents + o.TransitPriceCents,
		})
		ids = append(ids, o.OrderID)
	}
	if err := rows.Err(); err != nil {
		return OrderPage{}, err
	}

	if len(ids) > 0 {
		byOrder, err := r.linesFor(ctx, ids)
		if err != nil {
			return OrderPage{}, err
		}
		for i := range views {
			views[i].Lines = byOrder[views[i].OrderID]
		}
	}

	return OrderPage{Orders: views, Page: page, PageCount: pageCount, TotalCount: total}, nil
}

func (r *Repo) linesFor(ctx context.Context, orderIDs []string) (map[string][]LineView, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT l.order_id, l.sku_id, l.quantity, l.unit_price_cents, COALESCE(l.comment,''), s.name
		FROM order_lines l JOIN skus s ON s.id = l.sku_id
		WHERE l.order_id = ANY($1) ORDER BY l.sku_id`, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]LineView)
	for rows.Next() {
		var lv LineView
		if err := rows.Scan(&lv.OrderID, &lv.SKUID, &lv.Quantity, &lv.UnitPriceCents, &lv.Comment, &lv.SKUName); err != nil {
			return nil, err
		}
		lv.SubtotalCents = lv.UnitPriceCents * lv.Quantity
		out[lv.OrderID] = append(out[lv.OrderID], lv)
	}
	return out, rows.Err()
}

// MarkPaid records the provider's trade reference and moves the order from
// AwaitingPayment to AwaitingReview. The status predicate makes the callback
// idempotent against replays and racing confirmations.
func (r *Repo) MarkPaid(ctx context.Context, orderID, tradeNo string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, trade_no=$3, updated_at=now()
		WHERE order_id=$1 AND status=$4`,
		orderID, StatusAwaitingReview, tradeNo, StatusAwaitingPayment)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		if _, err := r.Get(ctx, orderID); err != nil {
			return err
		}
		return ErrBadStatus
	}
	return nil
}

// AdvanceStatus applies a single lifecycle transition, guarded by the state
// machine and by a status predicate on the row itself.
func (r *Repo) AdvanceStatus(ctx context.Context, orderID string, to Status) error {
	o, err := r.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !CanTransition(o.Status, to) {
		return ErrBadStatus
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now()
		WHERE order_id=$1 AND status=$3`, orderID, to, o.Status)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrBadStatus
	}
	return nil
}

// SubmitComments writes per-line review comments on the user's order and
// completes it. Unknown SKUs in the map are skipped, matching upsert-style
// tolerance in the review form.
func (r *Repo) SubmitComments(ctx context.Context, orderID string, userID int64, comments map[int64]string) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status Status
	err = tx.QueryRow(ctx,
		`SELECT status FROM orders WHERE order_id=$1 AND user_id=$2 FOR UPDATE`,
		orderID, userID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}
	if !CanTransition(status, StatusCompleted) {
		return ErrBadStatus
	}

	for skuID, comment := range comments {
		if _, err := tx.Exec(ctx, `
			UPDATE order_lines SET comment=$3
			WHERE order_id=$1 AND sku_id=$2`, orderID, skuID, comment); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status=$2, updated_at=now() WHERE order_id=$1`,
		orderID, StatusCompleted); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
