package repository

import (
	"context"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
)

// OrderLine is one submitted line. Prices are never sent; the backend prices
// the order at settlement.
type OrderLine struct {
	ItemID   entity.ID `json:"itemId"`
	Quantity int       `json:"quantity"`
}

// OrderRequest is the body posted for a new order
type OrderRequest struct {
	SessionID entity.ID   `json:"sessionId,omitempty"`
	Notes     string      `json:"notes"`
	Items     []OrderLine `json:"items"`
}

// OrderRepository posts confirmed carts to the backend. The returned id is
// empty when the backend did not send one.
type OrderRepository interface {
	AddDirectSale(ctx context.Context, req *OrderRequest) (entity.ID, error)
	AddSessionItems(ctx context.Context, req *OrderRequest) (entity.ID, error)
}
