package request

import "github.com/google/uuid"

// OrderItemRequest represents one line item in an order request
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	Note  string             `json:"note" binding:"max=255"`
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest represents an order status transition request
type UpdateOrderStatusRequest struct {
	Status int `json:"status" binding:"min=0,max=4"`
}

// OrderFilterRequest represents order listing filters
type OrderFilterRequest struct {
	Status    string `form:"status"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
