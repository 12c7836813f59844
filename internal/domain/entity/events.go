package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleConfirmedLine is one line of a SaleConfirmedEvent.
type SaleConfirmedLine struct {
	ItemID    ID              `json:"item_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// SaleConfirmedEvent is emitted after the backend accepted an order.
type SaleConfirmedEvent struct {
	OrderID     ID                  `json:"order_id"`
	OrderNumber string              `json:"order_number"`
	Variant     string              `json:"variant"`
	Terminal    string              `json:"terminal"`
	SessionID   ID                  `json:"session_id,omitempty"`
	Total       decimal.Decimal     `json:"total"`
	Lines       []SaleConfirmedLine `json:"lines"`
	ConfirmedAt time.Time           `json:"confirmed_at"`
}

// NewSaleConfirmedEvent builds the event for a receipt issued on terminal.
func NewSaleConfirmedEvent(r *Receipt, terminal string) SaleConfirmedEvent {
	lines := make([]SaleConfirmedLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, SaleConfirmedLine{
			ItemID:    l.Item.ID,
			Name:      l.Item.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return SaleConfirmedEvent{
		OrderID:     r.ID,
		OrderNumber: r.OrderNumber,
		Variant:     r.Variant.String(),
		Terminal:    terminal,
		SessionID:   r.SessionID,
		Total:       r.Total,
		Lines:       lines,
		ConfirmedAt: r.IssuedAt.UTC(),
	}
}
