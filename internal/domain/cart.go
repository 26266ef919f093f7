package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Product struct {
	ID     int64           `json:"id"`
	Title  string          `json:"title"`
	Price  decimal.Decimal `json:"price"`
	Image  string          `json:"image"`
	Amount int             `json:"amount"`
}

func (p Product) Subtotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Amount)))
}

type Stock struct {
	ID     int64 `json:"id"`
	Amount int   `json:"amount"`
}

// Cart keeps products in insertion/update order, unique by ID.
type Cart struct {
	Items []Product
}

func (c Cart) Find(productID int64) (Product, bool) {
	for _, p := range c.Items {
		if p.ID == productID {
			return p, true
		}
	}

	return Product{}, false
}

// Upsert returns a new cart with any entry for p.ID removed and p appended.
func (c Cart) Upsert(p Product) Cart {
	next := c.Remove(p.ID)
	next.Items = append(next.Items, p)

	return next
}

// Remove returns a new cart without productID. The receiver is left untouched.
func (c Cart) Remove(productID int64) Cart {
	items := make([]Product, 0, len(c.Items))
	for _, p := range c.Items {
		if p.ID != productID {
			items = append(items, p)
		}
	}

	return Cart{Items: items}
}

func (c Cart) Clone() Cart {
	items := make([]Product, len(c.Items))
	copy(items, c.Items)

	return Cart{Items: items}
}

func (c Cart) Size() int {
	return len(c.Items)
}

func (c Cart) Amounts() map[int64]int {
	amounts := make(map[int64]int, len(c.Items))
	for _, p := range c.Items {
		amounts[p.ID] = p.Amount
	}

	return amounts
}

func (c Cart) Total(unit currency.Unit) Money {
	total := decimal.Zero
	for _, p := range c.Items {
		total = total.Add(p.Subtotal())
	}

	return Money{Amount: total, Currency: unit}
}

// Validate checks that ids are unique and every amount is positive.
func (c Cart) Validate() error {
	seen := make(map[int64]struct{}, len(c.Items))

	for _, p := range c.Items {
		if _, ok := seen[p.ID]; ok {
			return fmt.Errorf("product[%d] is duplicated", p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Amount <= 0 {
			return fmt.Errorf("product[%d] amount %d is not positive", p.ID, p.Amount)
		}
	}

	return nil
}
