package backend

import (
	"context"
	"net/url"

	"github.com/sangkips/pscafe-console/internal/domain/entity"
)

const (
	pathCategories = "/api/ItemTypes/GetAll"
	pathItems      = "/api/Items/GetAll"
)

// ListCategories returns the item categories in backend order.
func (c *Client) ListCategories(ctx context.Context) ([]entity.Category, error) {
	var out []entity.Category
	if err := c.get(ctx, pathCategories, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListItems returns every item of a category. Availability filtering is left
// to the caller.
func (c *Client) ListItems(ctx context.Context, categoryID entity.ID) ([]entity.CatalogItem, error) {
	var out []entity.CatalogItem
	q := url.Values{"typeId": {categoryID.String()}}
	if err := c.get(ctx, pathItems, q, &out); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].CategoryID.IsZero() {
			out[i].CategoryID = categoryID
		}
	}
	return out, nil
}
