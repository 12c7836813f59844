package entity

import "github.com/shopspring/decimal"

// CartLine is one distinct item in a cart. UnitPrice is captured when the
// item is first added and never refreshed from the catalog.
type CartLine struct {
	Item      CatalogItem     `json:"item"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

func (l *CartLine) recompute() {
	l.LineTotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an ordered set of lines keyed by item id, in first-added order.
// Totals are always derived from the lines. The zero value is an empty cart.
// A Cart is not safe for concurrent use.
type Cart struct {
	lines []CartLine
	index map[ID]int
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{}
}

// Add increments the line for item, or appends a new line with quantity 1.
func (c *Cart) Add(item CatalogItem) {
	if i, ok := c.index[item.ID]; ok {
		c.lines[i].Quantity++
		c.lines[i].recompute()
		return
	}
	line := CartLine{Item: item, Quantity: 1, UnitPrice: item.Price}
	line.recompute()
	c.append(line)
}

// SetQuantity sets the quantity of an existing line. n < 1 removes the line.
// It returns false when no line exists for itemID.
func (c *Cart) SetQuantity(itemID ID, n int) bool {
	i, ok := c.index[itemID]
	if !ok {
		return false
	}
	if n < 1 {
		c.Remove(itemID)
		return true
	}
	c.lines[i].Quantity = n
	c.lines[i].recompute()
	return true
}

// Remove deletes the line for itemID if present.
func (c *Cart) Remove(itemID ID) {
	i, ok := c.index[itemID]
	if !ok {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.reindex()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
	c.index = nil
}

// Total is the sum of all line totals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.LineTotal)
	}
	return total
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// LineCount is the number of distinct lines.
func (c *Cart) LineCount() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Line returns a copy of the line for itemID.
func (c *Cart) Line(itemID ID) (CartLine, bool) {
	i, ok := c.index[itemID]
	if !ok {
		return CartLine{}, false
	}
	return c.lines[i], true
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// RestoreLines replaces the cart content with previously captured lines.
// Lines with a non-positive quantity are dropped and duplicate ids are merged
// into the first occurrence, keeping its captured unit price.
func (c *Cart) RestoreLines(lines []CartLine) {
	c.Clear()
	for _, l := range lines {
		if l.Quantity < 1 {
			continue
		}
		if i, ok := c.index[l.Item.ID]; ok {
			c.lines[i].Quantity += l.Quantity
			c.lines[i].recompute()
			continue
		}
		l.recompute()
		c.append(l)
	}
}

func (c *Cart) append(l CartLine) {
	if c.index == nil {
		c.index = make(map[ID]int)
	}
	c.index[l.Item.ID] = len(c.lines)
	c.lines = append(c.lines, l)
}

func (c *Cart) reindex() {
	c.index = make(map[ID]int, len(c.lines))
	for i, l := range c.lines {
		c.index[l.Item.ID] = i
	}
}

// CartSnapshot is the serializable view of a cart.
type CartSnapshot struct {
	Lines     []CartLine      `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
	LineCount int             `json:"line_count"`
}

// Snapshot returns a detached copy of the cart and its derived values.
func (c *Cart) Snapshot() CartSnapshot {
	return CartSnapshot{
		Lines:     c.Lines(),
		Total:     c.Total(),
		ItemCount: c.ItemCount(),
		LineCount: c.LineCount(),
	}
}
