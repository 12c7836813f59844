package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/pscafe-console/internal/application/service"
	"github.com/sangkips/pscafe-console/internal/domain/entity"
	"github.com/sangkips/pscafe-console/internal/presentation/http/dto/request"
	"github.com/sangkips/pscafe-console/internal/presentation/http/dto/response"
	"github.com/sangkips/pscafe-console/internal/presentation/http/middleware"
)

// CheckoutHandler handles the drinks and session checkout screens
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// GetState returns the catalog, cart, last receipt and pending notices
func (h *CheckoutHandler) GetState(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	state, err := h.checkoutService.State(c.Request.Context(), variant, middleware.GetTerminal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Checkout retrieved successfully", state)
}

// ReloadCatalog refetches categories and the first category's items
func (h *CheckoutHandler) ReloadCatalog(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	// Load failures are reported as notices in the state
	state, err := h.checkoutService.ReloadCatalog(c.Request.Context(), variant, middleware.GetTerminal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Catalog reloaded", state)
}

// SelectCategory shows the items of another category
func (h *CheckoutHandler) SelectCategory(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	var req request.SelectCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	state, err := h.checkoutService.SelectCategory(c.Request.Context(), variant, middleware.GetTerminal(c), req.CategoryID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category selected", state)
}

// AddItem adds one unit of an item to the cart
func (h *CheckoutHandler) AddItem(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	state, err := h.checkoutService.AddItem(c.Request.Context(), variant, middleware.GetTerminal(c), req.ItemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added to cart", state)
}

// UpdateItem sets the quantity of a cart line
func (h *CheckoutHandler) UpdateItem(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	var req request.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	itemID := entity.ID(c.Param("item_id"))
	state, err := h.checkoutService.SetQuantity(c.Request.Context(), variant, middleware.GetTerminal(c), itemID, *req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart updated", state)
}

// RemoveItem removes a line from the cart
func (h *CheckoutHandler) RemoveItem(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	state, err := h.checkoutService.RemoveItem(c.Request.Context(), variant, middleware.GetTerminal(c), entity.ID(c.Param("item_id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed from cart", state)
}

// ClearCart empties the cart. The request must carry confirm=true.
func (h *CheckoutHandler) ClearCart(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	var query request.ClearCartQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	state, err := h.checkoutService.ClearCart(c.Request.Context(), variant, middleware.GetTerminal(c), query.Confirm)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart cleared", state)
}

// Submit confirms the cart as a backend order
func (h *CheckoutHandler) Submit(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	var req request.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	result, err := h.checkoutService.Submit(c.Request.Context(), variant, middleware.GetTerminal(c), service.SubmitRequest{
		Notes:     req.Notes,
		SessionID: req.SessionID,
		Print:     req.Print,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.PrintError != "" {
		response.Created(c, "Order confirmed but printing failed", result)
		return
	}
	response.Created(c, "Order confirmed", result)
}

// GetReceipt renders the last receipt as a printable page
func (h *CheckoutHandler) GetReceipt(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	page, err := h.checkoutService.RenderReceipt(c.Request.Context(), variant, middleware.GetTerminal(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Page(c, page)
}

// PrintReceipt prints the last receipt again
func (h *CheckoutHandler) PrintReceipt(c *gin.Context) {
	variant, ok := checkoutVariant(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	terminal := middleware.GetTerminal(c)
	if err := h.checkoutService.PrintReceipt(ctx, variant, terminal); err != nil {
		response.Error(c, err)
		return
	}

	receipt, err := h.checkoutService.Receipt(ctx, variant, terminal)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt sent to printer", gin.H{"receipt": receipt})
}
