package domain

// CartItem is a single product line in the cart. Items are owned by the
// cart exclusively; handing one out always copies it.
type CartItem struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

func (i CartItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

type Cart struct {
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"totalAmount"`
}

func EmptyCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

// Recalculate rebuilds TotalAmount from the items. The stored total is never
// trusted; every read and every write path goes through here.
func (c *Cart) Recalculate() {
	var total float64
	for _, item := range c.Items {
		total += item.Subtotal()
	}
	c.TotalAmount = total
}

// ItemCount is the badge value, the sum of quantities across all items.
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) FindItem(code string) *CartItem {
	for i := range c.Items {
		if c.Items[i].Code == code {
			return &c.Items[i]
		}
	}
	return nil
}
