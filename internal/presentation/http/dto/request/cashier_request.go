package request

// OpenCashierRequest represents a cashier open request
type OpenCashierRequest struct {
	InitialAmount float64 `json:"initial_amount" binding:"min=0"`
}

// CashMovementRequest represents a manual inflow or outflow request
type CashMovementRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// ReconciliationEntryRequest pairs a payment method with the counted amount
type ReconciliationEntryRequest struct {
	Method string  `json:"method" binding:"required"`
	Amount float64 `json:"amount" binding:"min=0"`
}

// CloseCashierRequest represents a cashier close request
type CloseCashierRequest struct {
	Reconciliation []ReconciliationEntryRequest `json:"reconciliation"`
	AdminPassword  string                       `json:"admin_password"`
}

// MovementFilterRequest represents movement listing filters
type MovementFilterRequest struct {
	SessionID string `form:"session_id"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}
