package money

import (
	"testing"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRoundTrip(t *testing.T) {
	for _, raw := range []string{"0.01", "19.99", "1000.00"} {
		x := decimal.RequireFromString(raw)

		cents, err := ToCents(x)
		require.NoError(t, err)

		back, err := ToDecimal(cents)
		require.NoError(t, err)
		require.True(t, back.Equal(x), "%s came back as %s", raw, back)
	}
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cents := rapid.Int64Range(0, 1_000_000_000_00).Draw(t, "cents")
		amount := MustDecimal(cents)

		got, err := ToCents(amount)
		if err != nil {
			t.Fatalf("ToCents(%s): %v", amount, err)
		}
		if got != cents {
			t.Fatalf("ToCents(ToDecimal(%d)) = %d", cents, got)
		}
	})
}

func TestToCentsRejectsExtraDecimals(t *testing.T) {
	for _, raw := range []string{"1.005", "12.344", "0.001"} {
		_, err := ToCents(decimal.RequireFromString(raw))
		require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidValue), raw)
	}

	// trailing zeros are not extra precision
	cents, err := ToCents(decimal.RequireFromString("12.3400"))
	require.NoError(t, err)
	require.Equal(t, int64(1234), cents)
}

func TestNegativeValuesRejected(t *testing.T) {
	_, err := ToDecimal(-1)
	require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidValue))

	_, err = ToCents(decimal.RequireFromString("-0.01"))
	require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidValue))
}

func TestParseCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"12345", 12345, true},
		{" 1 ", 1, true},
		{"0", 0, true},
		{"-100", 0, false},
		{"12.34", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseCents(tc.in)
		if tc.ok {
			require.NoError(t, err, tc.in)
			require.Equal(t, tc.out, got, tc.in)
		} else {
			require.Error(t, err, tc.in)
			require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidValue), tc.in)
		}
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"12.34":    "12.34",
		"12,34":    "12.34",
		"1.234,56": "1234.56",
		"1,234.56": "1234.56",
		"500":      "500",
		"0,5":      "0.5",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		require.True(t, got.Equal(decimal.RequireFromString(want)), "%s parsed as %s", in, got)
	}

	for _, in := range []string{"", "-3", "12a", "1.234", "1,234", "12.345", "0.001", "1.234,567", "1,234.567"} {
		_, err := ParseAmount(in)
		require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidValue), in)
	}
}

func TestFormat(t *testing.T) {
	amount := decimal.RequireFromString("1234.5")

	require.Equal(t, "R$ 1.234,50", Format(amount, "pt-BR"))
	require.Equal(t, "$1,234.50", Format(amount, "en-US"))
	require.Equal(t, "R$ 0,00", Format(decimal.Zero, "unknown"))
}
