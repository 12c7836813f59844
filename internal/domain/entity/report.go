package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItem is one line of a direct sale as reported by the backend.
type SaleItem struct {
	ItemID     ID              `json:"itemId"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Item       *CatalogItem    `json:"item,omitempty"`
}

// Name returns the item name, falling back to the item id.
func (i SaleItem) Name() string {
	if i.Item != nil && i.Item.Name != "" {
		return i.Item.Name
	}
	return "#" + i.ItemID.String()
}

// Sale is a read-only projection of a backend direct sale.
type Sale struct {
	ID         ID              `json:"id"`
	Notes      string          `json:"notes"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  Timestamp       `json:"createdAt"`
	Items      []SaleItem      `json:"items"`
}

// Total returns the backend total, or the sum of its lines when absent.
func (s Sale) Total() decimal.Decimal {
	if !s.TotalPrice.IsZero() {
		return s.TotalPrice
	}
	total := decimal.Zero
	for _, it := range s.Items {
		if !it.TotalPrice.IsZero() {
			total = total.Add(it.TotalPrice)
			continue
		}
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Quantity is the number of units sold.
func (s Sale) Quantity() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}

type Client struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type Room struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Session is a read-only projection of a play session on a room.
type Session struct {
	ID         ID              `json:"id"`
	ClientID   ID              `json:"clientId"`
	Client     *Client         `json:"client,omitempty"`
	RoomID     ID              `json:"roomId"`
	Room       *Room           `json:"room,omitempty"`
	StartTime  Timestamp       `json:"startTime"`
	EndTime    Timestamp       `json:"endTime"`
	Hours      float64         `json:"hours"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Status     string          `json:"status,omitempty"`
}

// Duration returns the billed hours, derived from start/end when the backend
// did not send them. Open sessions count up to now.
func (s Session) Duration(now time.Time) float64 {
	if s.Hours > 0 {
		return s.Hours
	}
	if s.StartTime.IsZero() {
		return 0
	}
	end := s.EndTime.Time
	if end.IsZero() {
		end = now
	}
	if end.Before(s.StartTime.Time) {
		return 0
	}
	return end.Sub(s.StartTime.Time).Hours()
}

func (s Session) ClientName() string {
	if s.Client != nil {
		return s.Client.Name
	}
	return ""
}

func (s Session) RoomName() string {
	if s.Room != nil {
		return s.Room.Name
	}
	return ""
}
