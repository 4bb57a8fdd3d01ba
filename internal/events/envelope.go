package events

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventCatalogChanged = "CatalogChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // usually order_id or sku_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderLineSummary struct {
	SKUID    int64 `json:"sku_id"`
	Quantity int64 `json:"quantity"`
}

type OrderCreatedPayload struct {
	OrderID         string             `json:"order_id"`
	UserID          int64              `json:"user_id"`
	Lines           []OrderLineSummary `json:"lines"`
	TotalPriceCents int64              `json:"total_price_cents"`
}

type CatalogChangedPayload struct {
	SKUID  int64  `json:"sku_id"`
	Change string `json:"change"` // created | price | restock
}
