package models

// Product is the catalog entry line items snapshot from. StockCount is only
// authoritative when ShouldTrack is set, and must never go negative.
type Product struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	SKU          string `json:"sku"`
	SellingPrice int    `json:"selling_price"`
	BaseImage    string `json:"base_image"`
	ShouldTrack  bool   `json:"should_track"`
	StockCount   int    `json:"stock_count"`
	IsActive     bool   `json:"is_active"`
}

// NewLineItem builds the immutable snapshot for a product being added to an
// order.
func NewLineItem(p *Product, quantity int) LineItem {
	return LineItem{
		ID:       p.ID,
		Name:     p.Name,
		Slug:     p.Slug,
		Image:    p.BaseImage,
		Price:    p.SellingPrice,
		Quantity: quantity,
		Total:    quantity * p.SellingPrice,
	}
}
