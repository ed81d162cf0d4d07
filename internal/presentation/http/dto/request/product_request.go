package request

import "github.com/google/uuid"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Name       string     `json:"name" binding:"required,min=2,max=255"`
	Price      float64    `json:"price" binding:"required,gt=0"`
	Stock      int        `json:"stock" binding:"min=0"`
	StockAlert int        `json:"stock_alert" binding:"min=0"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	CategoryID *uuid.UUID `json:"category_id"`
	Name       *string    `json:"name" binding:"omitempty,min=2,max=255"`
	Price      *float64   `json:"price" binding:"omitempty,gt=0"`
	Stock      *int       `json:"stock" binding:"omitempty,min=0"`
	StockAlert *int       `json:"stock_alert" binding:"omitempty,min=0"`
	Active     *bool      `json:"active"`
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}
