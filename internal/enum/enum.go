// Package enum holds the string constants shared with the back office wire
// format.
package enum

// Purchase order status. PENDING, PARTIALLY_RECEIVED, and RECEIVED are
// derived from line receipt state; CANCELLED is a terminal stored state.
const (
	PurchaseOrderStatusPending           = "PENDING"
	PurchaseOrderStatusPartiallyReceived = "PARTIALLY_RECEIVED"
	PurchaseOrderStatusReceived          = "RECEIVED"
	PurchaseOrderStatusCancelled         = "CANCELLED"
)

const (
	PaymentMethodCash   = "CASH"
	PaymentMethodCard   = "CARD"
	PaymentMethodMobile = "MOBILE"
)

const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeFixed      = "FIXED_AMOUNT"
)

const (
	UserRoleOwner      = "OWNER"
	UserRoleCashier    = "CASHIER"
	UserRoleTechnician = "TECHNICIAN"
)

// Refresh events pushed to UI clients.
const (
	EventProductsChanged    = "products.changed"
	EventCashSessionChanged = "cash_session.changed"
	EventSalesChanged       = "sales.changed"
	EventStatsChanged       = "stats.changed"
)
