package request

import "github.com/sangkips/pscafe-console/internal/domain/entity"

// SelectCategoryRequest selects the category whose items are shown
type SelectCategoryRequest struct {
	CategoryID entity.ID `json:"category_id" binding:"required"`
}

// AddItemRequest adds one unit of a listed item to the cart
type AddItemRequest struct {
	ItemID entity.ID `json:"item_id" binding:"required"`
}

// SetQuantityRequest replaces the quantity of a cart line; zero or less removes it
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// SubmitOrderRequest confirms the cart
type SubmitOrderRequest struct {
	Notes     string    `json:"notes" binding:"max=500"`
	SessionID entity.ID `json:"session_id"`
	Print     bool      `json:"print"`
}

// ClearCartQuery must carry confirm=true
type ClearCartQuery struct {
	Confirm bool `form:"confirm"`
}
