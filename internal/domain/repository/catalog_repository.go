package repository

import (
	"context"
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
)

// CatalogRepository reads item categories and items from the backend
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]entity.Category, error)
	// ListItems returns the items of one category, unfiltered
	ListItems(ctx context.Context, categoryID entity.ID) ([]entity.CatalogItem, error)
}

// CatalogCache keeps short-lived copies of catalog reads
type CatalogCache interface {
	GetCategories(ctx context.Context) ([]entity.Category, bool, error)
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	GetItems(ctx context.Context, categoryID entity.ID) ([]entity.CatalogItem, bool, error)
	SetItems(ctx context.Context, categoryID entity.ID, items []entity.CatalogItem, ttl time.Duration) error
}
