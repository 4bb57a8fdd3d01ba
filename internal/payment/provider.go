package payment

import (
	"context"
	"errors"
)

type TradeState string

const (
	TradePending TradeState = "PENDING"
	TradeSuccess TradeState = "SUCCESS"
	TradeFailed  TradeState = "FAILED"
)

// Trade is the provider's view of one payment attempt for an order.
type Trade struct {
	State   TradeState `json:"state"`
	TradeNo string     `json:"trade_no,omitempty"`
}

var (
	// ErrProviderUnavailable: the payment provider could not be reached.
	// Recoverable; the caller retries with backoff.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrPaymentFailed: the provider reported a definitive failure. The order
	// stays AwaitingPayment for a later reattempt.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrStillPending: the bounded poll ran out of attempts while the trade
	// was still pending.
	ErrStillPending = errors.New("payment still pending")
)

// Provider is the narrow boundary to the external payment service.
type Provider interface {
	QueryTrade(ctx context.Context, orderID string) (Trade, error)
}
