package checkout

import (
	"context"
	"sync"
	"testing"

	"github.com/freshmart/storefront/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type memSKU struct {
	stock, sales, priceCents int64
}

// memLedger implements the ledger port with the same CAS semantics the
// database gives us: a decrement applies only when stock still equals the
// expected value at apply time.
type memLedger struct {
	mu   sync.Mutex
	skus map[int64]*memSKU
}

func newMemLedger(skus map[int64]*memSKU) *memLedger {
	return &memLedger{skus: skus}
}

func (l *memLedger) ReadSKU(_ context.Context, skuID int64) (catalog.Quote, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.skus[skuID]
	if !ok {
		return catalog.Quote{}, catalog.ErrSKUNotFound
	}
	return catalog.Quote{Stock: s.stock, Sales: s.sales, PriceCents: s.priceCents}, nil
}

func (l *memLedger) DecrementStock(_ context.Context, skuID, expectedStock, qty int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.skus[skuID]
	if !ok || s.stock != expectedStock {
		return false, nil
	}
	s.stock -= qty
	s.sales += qty
	return true, nil
}

func (l *memLedger) credit(skuID, qty int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if s, ok := l.skus[skuID]; ok {
		s.stock += qty
		s.sales -= qty
	}
}

// journalLedger records the decrements one reservation applied so an abort
// can undo exactly its own writes, the way a transaction rollback does.
type journalLedger struct {
	*memLedger
	applied []struct{ sku, qty int64 }
}

func (j *journalLedger) DecrementStock(ctx context.Context, skuID, expectedStock, qty int64) (bool, error) {
	ok, err := j.memLedger.DecrementStock(ctx, skuID, expectedStock, qty)
	if ok {
		j.applied = append(j.applied, struct{ sku, qty int64 }{skuID, qty})
	}
	return ok, err
}

func (j *journalLedger) rollback() {
	for _, a := range j.applied {
		j.memLedger.credit(a.sku, a.qty)
	}
}

// memCart maps user -> sku -> quantity.
type memCart map[int64]map[int64]int64

func (c memCart) Get(_ context.Context, userID, skuID int64) (int64, bool, error) {
	qty, ok := c[userID][skuID]
	return qty, ok, nil
}

// reserveTx runs the loop with the rollback the real repo gets from its
// transaction: an abort undoes every decrement this call applied.
func reserveTx(ctx context.Context, led *memLedger, carts QuantityReader, userID int64, skuIDs []int64) ([]reservedLine, error) {
	j := &journalLedger{memLedger: led}
	lines, err := reserveAll(ctx, j, carts, userID, skuIDs)
	if err != nil {
		j.rollback()
		return nil, err
	}
	return lines, nil
}

func TestReserveAll_DecrementsStockAndCapturesPrice(t *testing.T) {
	t.Parallel()

	led := newMemLedger(map[int64]*memSKU{
		1: {stock: 10, sales: 2, priceCents: 500},
		2: {stock: 4, sales: 0, priceCents: 1200},
	})
	carts := memCart{7: {1: 3, 2: 4}}

	lines, err := reserveAll(context.Background(), led, carts, 7, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, reservedLine{SKUID: 1, Quantity: 3, UnitPriceCents: 500}, lines[0])
	assert.Equal(t, reservedLine{SKUID: 2, Quantity: 4, UnitPriceCents: 1200}, lines[1])

	assert.Equal(t, int64(7), led.skus[1].stock)
	assert.Equal(t, int64(5), led.skus[1].sales)
	assert.Equal(t, int64(0), led.skus[2].stock)
	assert.Equal(t, int64(4), led.skus[2].sales)
}

func TestReserveAll_InsufficientStockAbortsWholeUnit(t *testing.T) {
	t.Parallel()

	// sku 1 fits and is processed first; sku 2 does not fit
	led := newMemLedger(map[int64]*memSKU{
		1: {stock: 10, priceCents: 500},
		2: {stock: 1, priceCents: 800},
	})
	carts := memCart{7: {1: 2, 2: 5}}

	_, err := reserveTx(context.Background(), led, carts, 7, []int64{1, 2})
	require.ErrorIs(t, err, ErrInsufficientStock)

	// rollback leaves sku 1 untouched despite its successful decrement
	assert.Equal(t, int64(10), led.skus[1].stock)
	assert.Equal(t, int64(0), led.skus[1].sales)
	assert.Equal(t, int64(1), led.skus[2].stock)
}

func TestReserveAll_UnknownSKU(t *testing.T) {
	t.Parallel()

	led := newMemLedger(map[int64]*memSKU{1: {stock: 5, priceCents: 100}})
	carts := memCart{7: {1: 1, 99: 1}}

	_, err := reserveTx(context.Background(), led, carts, 7, []int64{1, 99})
	require.ErrorIs(t, err, catalog.ErrSKUNotFound)
	assert.Equal(t, int64(5), led.skus[1].stock)
}

func TestReserveAll_SKUNotInCart(t *testing.T) {
	t.Parallel()

	led := newMemLedger(map[int64]*memSKU{1: {stock: 5, priceCents: 100}})
	carts := memCart{7: {}}

	_, err := reserveAll(context.Background(), led, carts, 7, []int64{1})
	require.ErrorIs(t, err, ErrInvalidInput)
}

// contendedLedger loses the CAS a fixed number of times before delegating,
// simulating a racing checkout that keeps moving the stock.
type contendedLedger struct {
	*memLedger
	losses int
	calls  int
}

func (l *contendedLedger) DecrementStock(ctx context.Context, skuID, expectedStock, qty int64) (bool, error) {
	l.calls++
	if l.calls <= l.losses {
		return false, nil
	}
	return l.memLedger.DecrementStock(ctx, skuID, expectedStock, qty)
}

func TestReserveAll_RetriesLostCAS(t *testing.T) {
	t.Parallel()

	led := &contendedLedger{
		memLedger: newMemLedger(map[int64]*memSKU{1: {stock: 5, priceCents: 100}}),
		losses:    2,
	}
	carts := memCart{7: {1: 2}}

	lines, err := reserveAll(context.Background(), led, carts, 7, []int64{1})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, led.calls)
	assert.Equal(t, int64(3), led.memLedger.skus[1].stock)
}

func TestReserveAll_BoundedRetryThenAbort(t *testing.T) {
	t.Parallel()

	led := &contendedLedger{
		memLedger: newMemLedger(map[int64]*memSKU{1: {stock: 5, priceCents: 100}}),
		losses:    1 << 30, // never wins
	}
	carts := memCart{7: {1: 2}}

	_, err := reserveAll(context.Background(), led, carts, 7, []int64{1})
	require.ErrorIs(t, err, ErrConcurrencyExhausted)
	assert.Equal(t, maxAttempts, led.calls)
	assert.Equal(t, int64(5), led.memLedger.skus[1].stock)
}

func TestReserveAll_TwoRacersOneWins(t *testing.T) {
	t.Parallel()

	// stock 5, two concurrent checkouts each want 3: exactly one fits
	led := newMemLedger(map[int64]*memSKU{1: {stock: 5, priceCents: 100}})
	carts := memCart{1: {1: 3}, 2: {1: 3}}

	results := make([]error, 2)
	var g errgroup.Group
	for i := 0; i < 2; i++ {
		i := i
		g.Go(func() error {
			_, err := reserveTx(context.Background(), led, carts, int64(i+1), []int64{1})
			results[i] = err
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var wins, outOfStock int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, ErrInsufficientStock):
			outOfStock++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, int64(2), led.skus[1].stock)
	assert.Equal(t, int64(3), led.skus[1].sales)
}

func TestReserveAll_HotSKUNeverOversells(t *testing.T) {
	t.Parallel()

	const (
		initial  = 10
		racers   = 16
		perOrder = 3
	)
	led := newMemLedger(map[int64]*memSKU{1: {stock: initial, priceCents: 100}})
	carts := memCart{}
	for u := int64(1); u <= racers; u++ {
		carts[u] = map[int64]int64{1: perOrder}
	}

	var (
		mu   sync.Mutex
		wins int
	)
	var g errgroup.Group
	for u := int64(1); u <= racers; u++ {
		u := u
		g.Go(func() error {
			if _, err := reserveTx(context.Background(), led, carts, u, []int64{1}); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	final := led.skus[1]
	assert.GreaterOrEqual(t, final.stock, int64(0), "stock must never go negative")
	assert.Equal(t, int64(initial)-final.stock, final.sales,
		"cumulative sales must equal cumulative stock decrease")
	assert.Equal(t, int64(wins*perOrder), final.sales)
	assert.LessOrEqual(t, wins, initial/perOrder)
}
