package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds a set of product ids; membership only, no quantities.
type Cart struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Products  []uuid.UUID `json:"products"`
	CreatedAt time.Time   `json:"created_at"`
}

type CreateCartRequest struct {
	UserID   uuid.UUID   `json:"user_id" validate:"required"`
	Products []uuid.UUID `json:"products"`
}

type AddToCartRequest struct {
	Products []uuid.UUID `json:"products"`
}

type RemoveFromCartRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
