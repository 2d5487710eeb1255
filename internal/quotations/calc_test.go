package quotations

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeTotalsBasicTax(t *testing.T) {
	items := []LineItem{{Description: "Web design", Quantity: 2, UnitPrice: 100}}

	totals := ComputeTotals(items, 0, 10)

	require.InDelta(t, 200.0, totals.Subtotal, 1e-9)
	require.InDelta(t, 20.0, totals.TaxAmount, 1e-9)
	require.InDelta(t, 220.0, totals.Total, 1e-9)
}

func TestComputeTotalsDiscountNoTax(t *testing.T) {
	items := []LineItem{
		{Description: "Consulting", Quantity: 1, UnitPrice: 50},
		{Description: "Setup", Quantity: 3, UnitPrice: 0},
	}

	totals := ComputeTotals(items, 10, 0)

	require.InDelta(t, 50.0, totals.Subtotal, 1e-9)
	require.InDelta(t, 0.0, totals.TaxAmount, 1e-9)
	require.InDelta(t, 40.0, totals.Total, 1e-9)
}

func TestComputeTotalsInvariant(t *testing.T) {
	cases := []struct {
		name     string
		items    []LineItem
		discount float64
		taxRate  float64
	}{
		{"no items", nil, 0, 0},
		{"single item", []LineItem{{Description: "a", Quantity: 3, UnitPrice: 19.99}}, 5, 16},
		{"many items", []LineItem{
			{Description: "a", Quantity: 1, UnitPrice: 120.50},
			{Description: "b", Quantity: 2.5, UnitPrice: 80},
			{Description: "c", Quantity: 10, UnitPrice: 3.33},
		}, 25, 7.5},
		{"full discount", []LineItem{{Description: "a", Quantity: 1, UnitPrice: 100}}, 100, 18},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			totals := ComputeTotals(tc.items, tc.discount, tc.taxRate)

			var subtotal float64
			for _, item := range tc.items {
				subtotal += item.Quantity * item.UnitPrice
			}
			require.InDelta(t, subtotal, totals.Subtotal, 1e-9)

			taxable := subtotal - tc.discount
			if taxable < 0 {
				taxable = 0
			}
			require.InDelta(t, taxable*tc.taxRate/100, totals.TaxAmount, 1e-9)
			require.InDelta(t, totals.Subtotal-tc.discount+totals.TaxAmount, totals.Total, 1e-9)
		})
	}
}

func TestComputeTotalsClampsTaxableBase(t *testing.T) {
	// A discount larger than the subtotal must never produce negative tax.
	items := []LineItem{{Description: "a", Quantity: 1, UnitPrice: 30}}

	totals := ComputeTotals(items, 100, 10)

	require.InDelta(t, 30.0, totals.Subtotal, 1e-9)
	require.InDelta(t, 0.0, totals.TaxAmount, 1e-9)
	require.InDelta(t, -70.0, totals.Total, 1e-9)
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []LineItem{
		{Description: "a", Quantity: 2, UnitPrice: 33.33},
		{Description: "b", Quantity: 1, UnitPrice: 99.99},
	}

	first := ComputeTotals(items, 12.5, 16)
	second := ComputeTotals(items, 12.5, 16)

	require.Equal(t, first, second)
}

func TestComputeTotalsIncludesBlankDescriptions(t *testing.T) {
	// The calculator itself sums every row; blank rows are only dropped by
	// the save-time filter.
	items := []LineItem{
		{Description: "real", Quantity: 1, UnitPrice: 100},
		{Description: "   ", Quantity: 2, UnitPrice: 50},
	}

	totals := ComputeTotals(items, 0, 0)
	require.InDelta(t, 200.0, totals.Subtotal, 1e-9)
}

func TestFilterBlankItems(t *testing.T) {
	items := []LineItem{
		{Description: "  Hosting  ", Quantity: 1, UnitPrice: 20},
		{Description: "", Quantity: 5, UnitPrice: 100},
		{Description: "\t", Quantity: 2, UnitPrice: 30},
		{Description: "Support", Quantity: 4, UnitPrice: 25},
	}

	filtered := FilterBlankItems(items)

	require.Len(t, filtered, 2)
	require.Equal(t, "Hosting", filtered[0].Description)
	require.Equal(t, "Support", filtered[1].Description)
	require.InDelta(t, 20.0, filtered[0].Total, 1e-9)
	require.InDelta(t, 100.0, filtered[1].Total, 1e-9)

	// Original slice is untouched.
	require.Equal(t, "  Hosting  ", items[0].Description)
	require.Len(t, items, 4)
}

func TestFilteringLawTotalsFromFilteredSet(t *testing.T) {
	items := []LineItem{
		{Description: "kept", Quantity: 1, UnitPrice: 50},
		{Description: "", Quantity: 1, UnitPrice: 1000},
	}

	filtered := FilterBlankItems(items)
	totals := ComputeTotals(filtered, 0, 10)

	require.InDelta(t, 50.0, totals.Subtotal, 1e-9)
	require.InDelta(t, 5.0, totals.TaxAmount, 1e-9)
	require.InDelta(t, 55.0, totals.Total, 1e-9)
}

func TestLineTotal(t *testing.T) {
	require.InDelta(t, 250.0, LineTotal(2.5, 100), 1e-9)
	require.InDelta(t, 0.0, LineTotal(0, 100), 1e-9)
}
