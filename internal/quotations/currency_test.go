package quotations

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsSupportedCurrency(t *testing.T) {
	require.True(t, IsSupportedCurrency("USD"))
	require.True(t, IsSupportedCurrency("KES"))
	require.True(t, IsSupportedCurrency("EUR"))
	require.False(t, IsSupportedCurrency("GBP"))
	require.False(t, IsSupportedCurrency("usd"))
}

func TestFormatAmount(t *testing.T) {
	require.Contains(t, FormatAmount("USD", 1234.5), "1,234.50")
	require.Contains(t, FormatAmount("EUR", 0), "0.00")

	// Unknown codes fall back to USD formatting rather than failing.
	require.NotEmpty(t, FormatAmount("???", 10))
}
