package domain

import "github.com/shopspring/decimal"

func init() {
	// The backend expects prices as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	IsVeg       bool            `json:"isVeg"`
	Stock       int             `json:"stock"`
	Unit        string          `json:"unit"`
	Image       string          `json:"image"`
	Rating      float64         `json:"rating,omitempty"`
	IsActive    bool            `json:"isActive"`
}

// CartLine is one product-and-quantity entry. Quantity is always >= 1 once persisted.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"imageRef,omitempty"`
}

func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in first-added order.
type Cart []CartLine

func (c Cart) IndexOf(productID string) int {
	for i, line := range c {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) Clone() Cart {
	if c == nil {
		return Cart{}
	}
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

func (c Cart) IsEmpty() bool {
	return len(c) == 0
}
