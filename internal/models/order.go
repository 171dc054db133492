package models

import (
	"time"

	"github.com/google/uuid"
)

// LineItem is a denormalized snapshot of a product at the moment it was
// added to an order. Name, slug, image and price are never re-derived from
// the live product; only quantity and total change after the fact.
type LineItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Image    string `json:"image"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Total    int    `json:"total"`
}

// OrderData holds the derived monetary fields of an order. The field set is
// fixed; Subtotal always equals the sum of the line item totals.
type OrderData struct {
	Subtotal     int    `json:"subtotal"`
	ShippingCost int    `json:"shipping_cost"`
	ShippingArea string `json:"shipping_area"`
	Discount     int    `json:"discount"`
	Advanced     int    `json:"advanced"`
}

type Order struct {
	ID        uuid.UUID  `json:"id"`
	Phone     string     `json:"phone"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Address   string     `json:"address"`
	Note      string     `json:"note"`
	Status    string     `json:"status"`
	AdminID   int64      `json:"admin_id"`
	Products  []LineItem `json:"products"`
	Data      OrderData  `json:"data"`
	StatusAt  time.Time  `json:"status_at"`
	ShippedAt time.Time  `json:"shipped_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Subtotal returns the sum of all line item totals.
func (o *Order) Subtotal() int {
	return SubtotalOf(o.Products)
}

// FindLineItem returns the line item referencing the given product, if any.
func (o *Order) FindLineItem(productID int64) (LineItem, bool) {
	for _, item := range o.Products {
		if item.ID == productID {
			return item, true
		}
	}
	return LineItem{}, false
}

// SubtotalOf sums line item totals.
func SubtotalOf(items []LineItem) int {
	sum := 0
	for _, item := range items {
		sum += item.Total
	}
	return sum
}
