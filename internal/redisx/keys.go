package redisx

import "time"

const (
	// Cart hash per user: cart:{user_id} -> {sku_id: quantity}
	KeyCart = "cart:%d"

	// Rendered index page payload, rebuilt by the pagegen worker.
	KeyIndexPage = "cache:index-page"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIndexPage = time.Hour
	TTLDedup     = 48 * time.Hour
)
