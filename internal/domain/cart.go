package domain

// CartLine is a pending purchase: product and quantity only, prices are read at view time.
type CartLine struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"cantidad"`
}

type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Add merges qty into an existing line for productID or appends a new one.
// qty below 1 counts as 1.
func (c *Cart) Add(productID int64, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines[i].Quantity += qty
			return
		}
	}
	c.Lines = append(c.Lines, CartLine{ProductID: productID, Quantity: qty})
}

func (c *Cart) Clear() { c.Lines = nil }

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

// Count is the number of units across all lines.
func (c Cart) Count() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.Lines))
	for _, l := range c.Lines {
		ids = append(ids, l.ProductID)
	}
	return ids
}

// CartItem is a cart line resolved against the current catalog.
type CartItem struct {
	Product  Product
	Quantity int
	Subtotal int64
}

type CartView struct {
	Items []CartItem
	Total int64
}
