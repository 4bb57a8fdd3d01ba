package catalog

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/freshmart/storefront/internal/events"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkago "github.com/segmentio/kafka-go"
)

var ErrInvalidSKU = errors.New("invalid sku")

// Admin applies catalog mutations. Every successful write invalidates the
// index-page cache and publishes a CatalogChanged event; the pagegen worker
// rebuilds the page off the write path.
type Admin struct {
	DB       *pgxpool.Pool
	Cache    *IndexCache
	Producer *events.Producer
	Service  string
	Log      *slog.Logger
}

func (a *Admin) CreateSKU(ctx context.Context, s SKU) (int64, error) {
	if s.Name == "" || s.PriceCents <= 0 || s.Stock < 0 {
		return 0, ErrInvalidSKU
	}
	var id int64
	err := a.DB.QueryRow(ctx, `
		INSERT INTO skus(spu_id, type_id, name, unit, price_cents, stock, sales)
		VALUES ($1,$2,$3,$4,$5,$6,0) RETURNING id`,
		s.SPUID, s.TypeID, s.Name, s.Unit, s.PriceCents, s.Stock).Scan(&id)
	if err != nil {
		return 0, err
	}
	a.changed(ctx, id, "created")
	return id, nil
}

func (a *Admin) UpdatePrice(ctx context.Context, skuID, priceCents int64) error {
	if priceCents <= 0 {
		return ErrInvalidSKU
	}
	ct, err := a.DB.Exec(ctx,
		`UPDATE skus SET price_cents=$2, updated_at=now() WHERE id=$1`, skuID, priceCents)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrSKUNotFound
	}
	a.changed(ctx, skuID, "price")
	return nil
}

// Restock adds inventory. Sales are untouched: they only move together with
// committed order decrements.
func (a *Admin) Restock(ctx context.Context, skuID, qty int64) error {
	if qty <= 0 {
		return ErrInvalidSKU
	}
	ct, err := a.DB.Exec(ctx,
		`UPDATE skus SET stock=stock+$2, updated_at=now() WHERE id=$1`, skuID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrSKUNotFound
	}
	a.changed(ctx, skuID, "restock")
	return nil
}

func (a *Admin) log() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.Default()
}

func (a *Admin) changed(ctx context.Context, skuID int64, change string) {
	if a.Cache != nil {
		if err := a.Cache.Invalidate(ctx); err != nil {
			a.log().Warn("index cache invalidate", "err", err)
		}
	}
	if a.Producer == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     events.EventCatalogChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      a.Service,
		CorrelationID: strconv.FormatInt(skuID, 10),
		Payload:       events.MustMarshal(events.CatalogChangedPayload{SKUID: skuID, Change: change}),
	}
	a.Producer.Publish(events.PartitionKey(ev.CorrelationID), events.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(events.EventCatalogChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
