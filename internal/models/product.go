package models

import (
	"time"

	"github.com/google/uuid"
)

// Product.InStock is fixed when the product is created and is not recomputed
// when AmountInStock changes. Listings filter on AmountInStock instead.
type Product struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	AmountInStock int       `json:"amount_in_stock"`
	Price         float64   `json:"price"`
	InStock       bool      `json:"in_stock"`
	CategoryID    uuid.UUID `json:"category_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type CreateProductRequest struct {
	Name          string    `json:"name" validate:"required,max=255"`
	AmountInStock *int      `json:"amount_in_stock" validate:"required,gte=0"`
	Price         float64   `json:"price" validate:"gte=0"`
	CategoryID    uuid.UUID `json:"category_id" validate:"required"`
}

type UpdateProductRequest struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,max=255"`
	AmountInStock *int       `json:"amount_in_stock,omitempty" validate:"omitempty,gte=0"`
	Price         *float64   `json:"price,omitempty" validate:"omitempty,gte=0"`
	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
}

type ProductFilter struct {
	CategoryID *uuid.UUID
}

type DeleteProductResponse struct {
	Detail  string   `json:"detail"`
	Product *Product `json:"product"`
}
