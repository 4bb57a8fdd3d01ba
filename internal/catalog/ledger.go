package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrSKUNotFound = errors.New("sku not found")

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same ledger
// code runs standalone and inside the checkout commit transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Ledger holds the authoritative stock and sales counters per SKU.
type Ledger struct{ db querier }

func NewLedger(pool *pgxpool.Pool) *Ledger { return &Ledger{db: pool} }

// LedgerWithTx binds the ledger to an open transaction. Decrements applied
// through it roll back with the transaction.
func LedgerWithTx(tx pgx.Tx) *Ledger { return &Ledger{db: tx} }

func (l *Ledger) ReadSKU(ctx context.Context, skuID int64) (Quote, error) {
	var q Quote
	err := l.db.QueryRow(ctx,
		`SELECT stock, sales, price_cents FROM skus WHERE id=$1`, skuID).
		Scan(&q.Stock, &q.Sales, &q.PriceCents)
	if errors.Is(err, pgx.ErrNoRows) {
		return Quote{}, ErrSKUNotFound
	}
	return q, err
}

// DecrementStock is the compare-and-swap the checkout protocol rests on:
// stock goes down and sales up by qty only if stock still equals expected.
// Reports whether the write applied.
func (l *Ledger) DecrementStock(ctx context.Context, skuID, expectedStock, qty int64) (bool, error) {
	ct, err := l.db.Exec(ctx, `
		UPDATE skus SET stock = stock - $3, sales = sales + $3, updated_at = now()
		WHERE id = $1 AND stock = $2`, skuID, expectedStock, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// SKUStock reports current stock only; the cart store uses it to guard upserts.
func (l *Ledger) SKUStock(ctx context.Context, skuID int64) (int64, error) {
	q, err := l.ReadSKU(ctx, skuID)
	if err != nil {
		return 0, err
	}
	return q.Stock, nil
}

func (l *Ledger) Get(ctx context.Context, skuID int64) (SKU, error) {
	var s SKU
	err := l.db.QueryRow(ctx, `
		SELECT id, spu_id, type_id, name, unit, price_cents, stock, sales, created_at, updated_at
		FROM skus WHERE id=$1`, skuID).
		Scan(&s.ID, &s.SPUID, &s.TypeID, &s.Name, &s.Unit, &s.PriceCents, &s.Stock, &s.Sales, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return SKU{}, ErrSKUNotFound
	}
	return s, err
}

func (l *Ledger) ListByType(ctx context.Context, typeID int64) ([]SKU, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, spu_id, type_id, name, unit, price_cents, stock, sales, created_at, updated_at
		FROM skus WHERE type_id=$1 ORDER BY created_at DESC`, typeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSKUs(rows)
}

// SameSPU lists the other variants of the SKU's product.
func (l *Ledger) SameSPU(ctx context.Context, spuID, excludeID int64) ([]SKU, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, spu_id, type_id, name, unit, price_cents, stock, sales, created_at, updated_at
		FROM skus WHERE spu_id=$1 AND id<>$2 ORDER BY id`, spuID, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSKUs(rows)
}

func (l *Ledger) ListTypes(ctx context.Context) ([]GoodsType, error) {
	rows, err := l.db.Query(ctx, `SELECT id, name FROM goods_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GoodsType
	for rows.Next() {
		var t GoodsType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (l *Ledger) Featured(ctx context.Context, limit int) ([]SKU, error) {
	rows, err := l.db.Query(ctx, `
		SELECT id, spu_id, type_id, name, unit, price_cents, stock, sales, created_at, updated_at
		FROM skus ORDER BY sales DESC, created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSKUs(rows)
}

func scanSKUs(rows pgx.Rows) ([]SKU, error) {
	var out []SKU
	for rows.Next() {
		var s SKU
		if err := rows.Scan(&s.ID, &s.SPUID, &s.TypeID, &s.Name, &s.Unit, &s.PriceCents, &s.Stock, &s.Sales, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
