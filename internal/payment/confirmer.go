package payment

import (
	"context"
	"time"

	"github.com/freshmart/storefront/internal/orders"
)

type OrderStore interface {
	GetForUser(ctx context.Context, orderID string, userID int64) (orders.Order, error)
	MarkPaid(ctx context.Context, orderID, tradeNo string) error
}

// Confirmer reconciles an order with the provider's trade status. Polling is
// bounded by MaxAttempts and the caller's context; an unbounded wait loop
// here would pin a request worker on a user who never pays.
type Confirmer struct {
	Orders      OrderStore
	Provider    Provider
	MaxAttempts int
	Interval    time.Duration
}

func (c *Confirmer) attempts() int {
	if c.MaxAttempts > 0 {
		return c.MaxAttempts
	}
	return 3
}

func (c *Confirmer) interval() time.Duration {
	if c.Interval > 0 {
		return c.Interval
	}
	return 5 * time.Second
}

// Confirm polls the provider for the order's trade status. On success it
// records the trade reference and advances the order to AwaitingReview. On a
// definitive failure the order is left untouched in AwaitingPayment.
func (c *Confirmer) Confirm(ctx context.Context, orderID string, userID int64) (string, error) {
	o, err := c.Orders.GetForUser(ctx, orderID, userID)
	if err != nil {
		return "", err
	}
	if o.Status != orders.StatusAwaitingPayment {
		return "", orders.ErrBadStatus
	}

	for attempt := 1; ; attempt++ {
		trade, err := c.Provider.QueryTrade(ctx, orderID)
		if err != nil {
			return "", err
		}

		switch trade.State {
		case TradeSuccess:
			if err := c.Orders.MarkPaid(ctx, orderID, trade.TradeNo); err != nil {
				return "", err
			}
			return trade.TradeNo, nil
		case TradeFailed:
			return "", ErrPaymentFailed
		}

		if attempt >= c.attempts() {
			return "", ErrStillPending
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.interval()):
		}
	}
}
