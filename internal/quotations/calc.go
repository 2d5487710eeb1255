package quotations

import "strings"

// Totals holds the derived numeric fields of a quotation.
type Totals struct {
	Subtotal  float64 `json:"subtotal"`
	TaxAmount float64 `json:"tax_amount"`
	Total     float64 `json:"total"`
}

// LineTotal computes the amount for a single line.
func LineTotal(quantity, unitPrice float64) float64 {
	return quantity * unitPrice
}

// ComputeTotals derives subtotal, tax amount and grand total from the given
// items, absolute discount and tax rate percentage. It is pure: same inputs
// always yield the same outputs, and no state is read or written.
//
// The taxable base is clamped at zero so a discount larger than the subtotal
// never produces a negative tax amount.
func ComputeTotals(items []LineItem, discount, taxRate float64) Totals {
	var subtotal float64
	for _, item := range items {
		subtotal += LineTotal(item.Quantity, item.UnitPrice)
	}

	taxable := subtotal - discount
	if taxable < 0 {
		taxable = 0
	}
	taxAmount := taxable * taxRate / 100

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     subtotal - discount + taxAmount,
	}
}

// FilterBlankItems drops items whose description is empty after trimming and
// recomputes each surviving line total. The original slice is not modified.
func FilterBlankItems(items []LineItem) []LineItem {
	filtered := make([]LineItem, 0, len(items))
	for _, item := range items {
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			continue
		}
		item.Description = desc
		item.Total = LineTotal(item.Quantity, item.UnitPrice)
		filtered = append(filtered, item)
	}
	return filtered
}
