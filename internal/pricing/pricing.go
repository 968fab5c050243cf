package pricing

import "github.com/shopspring/decimal"

// Defaults observed on the storefront checkout, in paise.
const (
	DefaultFreeShippingThreshold int64 = 50000
	DefaultFlatShippingFee       int64 = 500
)

// DefaultTaxRate is the GST rate applied at checkout.
var DefaultTaxRate = decimal.RequireFromString("0.18")

// Calculator turns a cart subtotal into shipping, tax and total. All amounts
// are minor currency units.
type Calculator struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
	TaxRate               decimal.Decimal
}

// Summary is the priced breakdown of a subtotal.
type Summary struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

func Default() Calculator {
	return New(DefaultFreeShippingThreshold, DefaultFlatShippingFee, DefaultTaxRate)
}

func New(threshold, flatFee int64, taxRate decimal.Decimal) Calculator {
	return Calculator{
		FreeShippingThreshold: threshold,
		FlatShippingFee:       flatFee,
		TaxRate:               taxRate,
	}
}

// Shipping is free at or above the threshold and for an empty subtotal.
func (c Calculator) Shipping(subtotal int64) int64 {
	if subtotal >= c.FreeShippingThreshold || subtotal <= 0 {
		return 0
	}
	return c.FlatShippingFee
}

// Tax rounds half-to-even to the minor unit.
func (c Calculator) Tax(subtotal int64) int64 {
	return decimal.NewFromInt(subtotal).Mul(c.TaxRate).RoundBank(0).IntPart()
}

func (c Calculator) Quote(subtotal int64) Summary {
	shipping := c.Shipping(subtotal)
	tax := c.Tax(subtotal)
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
