package orders

import "time"

type PayMethod int16

const (
	PayOnDelivery PayMethod = 1
	PayWallet     PayMethod = 2
	PayGateway    PayMethod = 3
	PayCard       PayMethod = 4
)

func (m PayMethod) Valid() bool {
	return m >= PayOnDelivery && m <= PayCard
}

type Order struct {
	OrderID           string    `json:"order_id"`
	UserID            int64     `json:"user_id"`
	AddressID         int64     `json:"address_id"`
	PayMethod         PayMethod `json:"pay_method"`
	TotalCount        int64     `json:"total_count"`
	TotalPriceCents   int64     `json:"total_price_cents"`
	TransitPriceCents int64     `json:"transit_price_cents"`
	Status            Status    `json:"status"`
	TradeNo           string    `json:"trade_no,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// OrderLine keeps the unit price at purchase time, so historical orders stay
// decoupled from later catalog price changes.
type OrderLine struct {
	OrderID        string `json:"order_id"`
	SKUID          int64  `json:"sku_id"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Comment        string `json:"comment,omitempty"`
}

// LineView is the read-model line with its computed subtotal. The subtotal is
// derived per request and never stored.
type LineView struct {
	OrderLine
	SKUName       string `json:"sku_name"`
	SubtotalCents int64  `json:"subtotal_cents"`
}

type OrderView struct {
	Order
	StatusName    string     `json:"status_name"`
	TotalPayCents int64      `json:"total_pay_cents"`
	Lines         []LineView `json:"lines"`
}

type OrderPage struct {
	Orders     []OrderView `json:"orders"`
	Page       int         `json:"page"`
	PageCount  int         `json:"page_count"`
	TotalCount int64       `json:"total_count"`
}
