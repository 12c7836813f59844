package cache

import (
	"context"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
)

// NoopCatalogCache never hits. It is used when no Redis address is configured.
type NoopCatalogCache struct{}

func (NoopCatalogCache) GetCategories(_ context.Context) ([]entity.Category, bool, error) {
	return nil, false, nil
}

func (NoopCatalogCache) SetCategories(_ context.Context, _ []entity.Category, _ time.Duration) error {
	return nil
}

func (NoopCatalogCache) GetItems(_ context.Context, _ entity.ID) ([]entity.CatalogItem, bool, error) {
	return nil, false, nil
}

func (NoopCatalogCache) SetItems(_ context.Context, _ entity.ID, _ []entity.CatalogItem, _ time.Duration) error {
	return nil
}
