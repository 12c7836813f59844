package entity

import "github.com/shopspring/decimal"

// PlaceholderImage is shown for items whose image is missing or broken.
const PlaceholderImage = "/static/img/item-placeholder.png"

// Category groups catalog items (an "item type" on the backend).
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// CatalogItem is a read-only snapshot of a sellable item.
type CatalogItem struct {
	ID                  ID              `json:"id"`
	Name                string          `json:"name"`
	Price               decimal.Decimal `json:"price"`
	IsAvailable         bool            `json:"isAvailable"`
	SelectableInSession bool            `json:"selectableInSession"`
	ImageURL            *string         `json:"imageUrl,omitempty"`
	Notes               *string         `json:"notes,omitempty"`
	CategoryID          ID              `json:"itemTypeId,omitempty"`
}

// DisplayImage returns the item image, or the placeholder when none is set.
func (i CatalogItem) DisplayImage() string {
	if i.ImageURL == nil || *i.ImageURL == "" {
		return PlaceholderImage
	}
	return *i.ImageURL
}
