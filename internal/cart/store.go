package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/freshmart/storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrStockExceeded   = errors.New("quantity exceeds stock")
)

// StockReader guards cart writes against current inventory. Implemented by
// the catalog ledger.
type StockReader interface {
	SKUStock(ctx context.Context, skuID int64) (int64, error)
}

// Store keeps one redis hash per user: sku_id -> quantity. It is transient
// reservation state, not a system of record; the checkout coordinator purges
// committed entries after the order is durable.
type Store struct {
	RDB   *redis.Client
	Stock StockReader
}

func key(userID int64) string { return fmt.Sprintf(redisx.KeyCart, userID) }

// Add accumulates delta onto the existing quantity (add-to-cart). The write
// is rejected without mutating when the result would exceed current stock.
func (s *Store) Add(ctx context.Context, userID, skuID, delta int64) (int64, error) {
	if delta <= 0 {
		return 0, ErrInvalidQuantity
	}
	qty := delta
	if cur, ok, err := s.Get(ctx, userID, skuID); err != nil {
		return 0, err
	} else if ok {
		qty += cur
	}
	return qty, s.put(ctx, userID, skuID, qty)
}

// Set replaces the quantity outright (cart update).
func (s *Store) Set(ctx context.Context, userID, skuID, qty int64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	return s.put(ctx, userID, skuID, qty)
}

func (s *Store) put(ctx context.Context, userID, skuID, qty int64) error {
	stock, err := s.Stock.SKUStock(ctx, skuID)
	if err != nil {
		return err
	}
	if qty > stock {
		return ErrStockExceeded
	}
	return s.RDB.HSet(ctx, key(userID), strconv.FormatInt(skuID, 10), qty).Err()
}

func (s *Store) Get(ctx context.Context, userID, skuID int64) (int64, bool, error) {
	v, err := s.RDB.HGet(ctx, key(userID), strconv.FormatInt(skuID, 10)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	qty, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cart entry %s: %w", v, err)
	}
	return qty, true, nil
}

func (s *Store) GetAll(ctx context.Context, userID int64) (map[int64]int64, error) {
	raw, err := s.RDB.HGetAll(ctx, key(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[int64]int64, len(raw))
	for field, v := range raw {
		skuID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart field %s: %w", field, err)
		}
		qty, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart entry %s: %w", v, err)
		}
		out[skuID] = qty
	}
	return out, nil
}

func (s *Store) Remove(ctx context.Context, userID, skuID int64) error {
	return s.RDB.HDel(ctx, key(userID), strconv.FormatInt(skuID, 10)).Err()
}

// RemoveMany deletes the given entries. Absent fields are a no-op, so the
// post-commit cleanup may be retried safely.
func (s *Store) RemoveMany(ctx context.Context, userID int64, skuIDs []int64) error {
	if len(skuIDs) == 0 {
		return nil
	}
	fields := make([]string, len(skuIDs))
	for i, id := range skuIDs {
		fields[i] = strconv.FormatInt(id, 10)
	}
	return s.RDB.HDel(ctx, key(userID), fields...).Err()
}

// CountItems reports the number of distinct cart entries (the badge count),
// not the summed quantity.
func (s *Store) CountItems(ctx context.Context, userID int64) (int64, error) {
	return s.RDB.HLen(ctx, key(userID)).Result()
}

// TotalQuantity sums quantities across entries.
func (s *Store) TotalQuantity(ctx context.Context, userID int64) (int64, error) {
	vals, err := s.RDB.HVals(ctx, key(userID)).Result()
	if err != nil {
		return 0, err
	}
	var total int64
	for _, v := range vals {
		qty, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("corrupt cart entry %s: %w", v, err)
		}
		total += qty
	}
	return total, nil
}
