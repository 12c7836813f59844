package repository

import (
	"context"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
)

// SaleEventPublisher announces confirmed orders to other systems
type SaleEventPublisher interface {
	PublishSaleConfirmed(ctx context.Context, event entity.SaleConfirmedEvent) error
}
