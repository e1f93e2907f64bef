// Package pricing computes quote totals and the payable amount for a checkout.
// It holds no state and performs no I/O.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Tolerance absorbs floating-point residue in money comparisons
	Tolerance = decimal.RequireFromString("0.01")
	// MinimumCharge is the smallest amount the processor accepts
	MinimumCharge = decimal.RequireFromString("0.50")

	hundred = decimal.NewFromInt(100)
)

type DepositType string

const (
	DepositPercentage DepositType = "percentage"
	DepositFixed      DepositType = "fixed"
)

// LineItem is the subset of a quote line the calculator needs
type LineItem struct {
	LineTotal  float64
	IsOptional bool
	IsSelected bool
	IsTaxable  bool
}

// Included reports whether the item counts toward totals
func Included(item LineItem) bool {
	return !item.IsOptional || item.IsSelected
}

// DepositPolicy determines the minimum upfront payment
type DepositPolicy struct {
	Type  DepositType
	Value float64
}

// Breakdown is the calculator's output
type Breakdown struct {
	Subtotal        float64
	TaxableSubtotal float64
	Tax             float64
	Total           float64
	MinimumPayment  float64
	PaymentAmount   float64
	IsFullPayment   bool
}

// AmountMinorUnits is the payment amount in cents
func (b *Breakdown) AmountMinorUnits() int64 {
	return ToMinorUnits(b.PaymentAmount)
}

// MinimumPaymentError is returned when the requested amount is below the deposit
type MinimumPaymentError struct {
	Minimum float64
}

func (e *MinimumPaymentError) Error() string {
	return fmt.Sprintf("Payment amount must be at least $%s", decimal.NewFromFloat(e.Minimum).StringFixed(2))
}

// InvalidAmountError is returned for negative requested amounts
type InvalidAmountError struct {
	Amount float64
}

func (e *InvalidAmountError) Error() string {
	return "Payment amount must be positive"
}

// Compute derives totals and the amount to charge. When requested is nil the
// minimum payment is charged.
func Compute(items []LineItem, policy DepositPolicy, taxRate float64, requested *float64) (*Breakdown, error) {
	subtotal := decimal.Zero
	taxable := decimal.Zero
	for _, item := range items {
		if !Included(item) {
			continue
		}
		lineTotal := decimal.NewFromFloat(item.LineTotal)
		subtotal = subtotal.Add(lineTotal)
		if item.IsTaxable {
			taxable = taxable.Add(lineTotal)
		}
	}

	tax := taxable.Mul(decimal.NewFromFloat(taxRate))
	total := subtotal.Add(tax)

	var minimum decimal.Decimal
	switch policy.Type {
	case DepositPercentage:
		minimum = total.Mul(decimal.NewFromFloat(policy.Value)).Div(hundred)
	default:
		minimum = decimal.NewFromFloat(policy.Value)
	}
	minimum = minimum.Round(2)

	amount := minimum
	if requested != nil {
		if *requested < 0 {
			return nil, &InvalidAmountError{Amount: *requested}
		}
		amount = decimal.NewFromFloat(*requested).Round(2)
		if amount.LessThan(minimum.Sub(Tolerance)) {
			return nil, &MinimumPaymentError{Minimum: minimum.InexactFloat64()}
		}
	}
	if amount.LessThan(MinimumCharge) {
		amount = MinimumCharge
	}

	return &Breakdown{
		Subtotal:        subtotal.InexactFloat64(),
		TaxableSubtotal: taxable.InexactFloat64(),
		Tax:             tax.InexactFloat64(),
		Total:           total.InexactFloat64(),
		MinimumPayment:  minimum.InexactFloat64(),
		PaymentAmount:   amount.InexactFloat64(),
		IsFullPayment:   amount.GreaterThanOrEqual(total.Sub(Tolerance)),
	}, nil
}

// ToMinorUnits converts a dollar amount to cents, rounding half away from zero
func ToMinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(hundred).Round(0).IntPart()
}

// FromMinorUnits converts cents to a dollar amount
func FromMinorUnits(cents int64) float64 {
	return decimal.New(cents, -2).InexactFloat64()
}
