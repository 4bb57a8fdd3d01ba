package catalog

import "time"

type GoodsType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SKU is one purchasable variant; SPUID groups variants of the same product.
type SKU struct {
	ID         int64     `json:"id"`
	SPUID      int64     `json:"spu_id"`
	TypeID     int64     `json:"type_id"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	PriceCents int64     `json:"price_cents"`
	Stock      int64     `json:"stock"`
	Sales      int64     `json:"sales"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Quote is the point-in-time ledger read used during reservation.
type Quote struct {
	Stock      int64
	Sales      int64
	PriceCents int64
}

// IndexPage is the cached storefront landing payload.
type IndexPage struct {
	Types    []GoodsType `json:"types"`
	Featured []SKU       `json:"featured"`
}
