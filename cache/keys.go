package cache

import "time"

const (
	// KeyOrderStatus caches the last known status pair for an order,
	// keyed by order id. The database stays the source of truth.
	KeyOrderStatus = "order:%s:status"

	// KeyTokenDenied marks a logged-out access token until it expires.
	KeyTokenDenied = "auth:denied:%s"
)

const (
	TTLStatusCache = 5 * time.Minute
)
