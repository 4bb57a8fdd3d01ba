package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/freshmart/storefront/internal/events"
	"github.com/freshmart/storefront/internal/orders"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

type CartStore interface {
	QuantityReader
	RemoveMany(ctx context.Context, userID int64, skuIDs []int64) error
}

type AddressChecker interface {
	BelongsTo(ctx context.Context, addressID, userID int64) (bool, error)
}

type Committer interface {
	Commit(ctx context.Context, userID, addressID int64, payMethod orders.PayMethod, skuIDs []int64, carts QuantityReader) (Receipt, error)
}

type PlaceOrderInput struct {
	UserID    int64
	AddressID int64
	PayMethod orders.PayMethod
	SKUIDs    []int64
}

// Service is the checkout coordinator. It validates the request, runs the
// commit unit, then clears the committed cart lines. Cart cleanup is
// intentionally outside the transaction: the two stores share no coordinator,
// so cleanup is idempotent best-effort and a failure never invalidates the
// committed order.
type Service struct {
	Cart      CartStore
	Addresses AddressChecker
	Repo      Committer
	Producer  *events.Producer
	Service   string
	Log       *slog.Logger
}

func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (Receipt, error) {
	if in.UserID <= 0 || in.AddressID <= 0 || len(in.SKUIDs) == 0 {
		return Receipt{}, fmt.Errorf("missing fields: %w", ErrInvalidInput)
	}
	if !in.PayMethod.Valid() {
		return Receipt{}, fmt.Errorf("pay method %d: %w", in.PayMethod, ErrInvalidInput)
	}
	seen := make(map[int64]bool, len(in.SKUIDs))
	for _, id := range in.SKUIDs {
		if id <= 0 || seen[id] {
			return Receipt{}, fmt.Errorf("bad sku selection: %w", ErrInvalidInput)
		}
		seen[id] = true
	}

	ok, err := s.Addresses.BelongsTo(ctx, in.AddressID, in.UserID)
	if err != nil {
		return Receipt{}, err
	}
	if !ok {
		return Receipt{}, ErrAddressNotFound
	}

	receipt, err := s.Repo.Commit(ctx, in.UserID, in.AddressID, in.PayMethod, in.SKUIDs, s.Cart)
	if err != nil {
		return Receipt{}, err
	}

	// The order stands even if cleanup fails; the leftover cart lines are
	// reported and can be removed again later.
	if err := s.Cart.RemoveMany(ctx, in.UserID, in.SKUIDs); err != nil {
		s.log().Warn("cart cleanup after commit",
			"order_id", receipt.OrderID, "user_id", in.UserID, "err", err)
	}

	s.publishCreated(in.UserID, receipt)
	return receipt, nil
}

func (s *Service) publishCreated(userID int64, receipt Receipt) {
	if s.Producer == nil {
		return
	}
	lines := make([]events.OrderLineSummary, 0, len(receipt.Lines))
	for _, ln := range receipt.Lines {
		lines = append(lines, events.OrderLineSummary{SKUID: ln.SKUID, Quantity: ln.Quantity})
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.Service,
		CorrelationID: receipt.OrderID,
		Payload: events.MustMarshal(events.OrderCreatedPayload{
			OrderID:         receipt.OrderID,
			UserID:          userID,
			Lines:           lines,
			TotalPriceCents: receipt.TotalPriceCents,
		}),
	}
	s.Producer.Publish(events.PartitionKey(receipt.OrderID), events.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) log() *slog.Logger {
	if s.Log != nil {
		return s.Log
	}
	return slog.Default()
}
