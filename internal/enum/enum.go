package enum

// ── Group A: State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// ── Group B: Checkout options (CHECK constrained in DB) ──

const (
	OrderTypePickup   = "pickup"
	OrderTypeDelivery = "delivery"
)

// ── Group C: Cart categories (no DB constraint on order_items) ──

const (
	CategoryBiryani = "biryani"
	CategoryCurry   = "curry"
	CategoryKebab   = "kebab"
	CategorySauce   = "sauce"
)

// ── Group D: Payment ──

const (
	CurrencyEUR = "eur"
)
