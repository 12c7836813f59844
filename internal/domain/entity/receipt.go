package entity

import (
	"time"

	"github.com/sangkips/pscafe-console/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// ReceiptHeader holds the store/business header printed at the top of a receipt.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// Receipt is the immutable record of a confirmed order.
// It is NOT a database entity. It is built once from the submitted cart and
// superseded by the next order.
type Receipt struct {
	Header      ReceiptHeader        `json:"header"`
	ID          ID                   `json:"id"`
	OrderNumber string               `json:"order_number"`
	Variant     enum.CheckoutVariant `json:"variant"`
	SessionID   ID                   `json:"session_id,omitempty"`
	Lines       []CartLine           `json:"lines"`
	Total       decimal.Decimal      `json:"total"`
	Notes       string               `json:"notes,omitempty"`
	Timestamp   string               `json:"timestamp"`
	IssuedAt    time.Time            `json:"issued_at"`
}

// ItemCount is the sum of quantities on the receipt.
func (r *Receipt) ItemCount() int {
	n := 0
	for _, l := range r.Lines {
		n += l.Quantity
	}
	return n
}
