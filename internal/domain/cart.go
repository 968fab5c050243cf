package domain

// LineKey identifies a cart line. Two lines never share a key.
type LineKey struct {
	ProductID string `json:"productId"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// CartLineItem is one (product, size, color) entry of a cart. JSON names
// match the serialized cart format kept in session storage.
type CartLineItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"price"`
	Image     string `json:"image"`
	Category  string `json:"category"`
	Size      string `json:"size"`
	Color     string `json:"color"`
	Quantity  int    `json:"quantity"`
}

func (l CartLineItem) Key() LineKey {
	return LineKey{ProductID: l.ProductID, Size: l.Size, Color: l.Color}
}

func (l CartLineItem) LineTotal() int64 {
	return l.UnitPrice * int64(l.Quantity)
}
