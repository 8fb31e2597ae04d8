package usecase

import (
	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	DefaultFreeDeliveryThreshold = decimal.NewFromInt(500)
	DefaultDeliveryFee           = decimal.NewFromInt(40)
)

// Pricing derives money figures from a cart. Nothing is cached; call it on every read.
type Pricing struct {
	FreeDeliveryThreshold decimal.Decimal
	FlatDeliveryFee       decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		FreeDeliveryThreshold: DefaultFreeDeliveryThreshold,
		FlatDeliveryFee:       DefaultDeliveryFee,
	}
}

type PriceSummary struct {
	ItemCount            int             `json:"itemCount"`
	Subtotal             decimal.Decimal `json:"subtotal"`
	DeliveryFee          decimal.Decimal `json:"deliveryFee"`
	Total                decimal.Decimal `json:"total"`
	FreeDelivery         bool            `json:"freeDelivery"`
	AmountToFreeDelivery decimal.Decimal `json:"amountToFreeDelivery"`
}

func Subtotal(cart domain.Cart) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range cart {
		sum = sum.Add(line.LineTotal())
	}
	return sum
}

func ItemCount(cart domain.Cart) int {
	count := 0
	for _, line := range cart {
		count += line.Quantity
	}
	return count
}

// DeliveryFee is zero at or above the threshold, otherwise the flat fee.
func (p Pricing) DeliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeDeliveryThreshold) {
		return decimal.Zero
	}
	return p.FlatDeliveryFee
}

func (p Pricing) Total(cart domain.Cart) decimal.Decimal {
	subtotal := Subtotal(cart)
	return subtotal.Add(p.DeliveryFee(subtotal))
}

func (p Pricing) Summarize(cart domain.Cart) PriceSummary {
	subtotal := Subtotal(cart)
	fee := p.DeliveryFee(subtotal)

	remaining := decimal.Zero
	if fee.IsPositive() {
		remaining = p.FreeDeliveryThreshold.Sub(subtotal)
	}

	return PriceSummary{
		ItemCount:            ItemCount(cart),
		Subtotal:             subtotal,
		DeliveryFee:          fee,
		Total:                subtotal.Add(fee),
		FreeDelivery:         fee.IsZero(),
		AmountToFreeDelivery: remaining,
	}
}
