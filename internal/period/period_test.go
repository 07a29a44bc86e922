package period

import (
	"encoding/json"
	"testing"
	"time"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestIsMutable(t *testing.T) {
	today := time.Date(2025, time.July, 1, 0, 0, 1, 0, time.UTC)

	tests := []struct {
		name   string
		period Period
		want   bool
	}{
		{name: "current month", period: Period{Year: 2025, Month: time.July}, want: true},
		{name: "next month", period: Period{Year: 2025, Month: time.August}, want: true},
		{name: "next year earlier month", period: Period{Year: 2026, Month: time.January}, want: true},
		{name: "previous month", period: Period{Year: 2025, Month: time.June}, want: false},
		{name: "previous year later month", period: Period{Year: 2024, Month: time.December}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, IsMutable(tt.period, today))
		})
	}
}

func TestIsMutableIgnoresDayOfMonth(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		year := rapid.IntRange(2000, 2100).Draw(t, "year")
		month := time.Month(rapid.IntRange(1, 12).Draw(t, "month"))
		p := Period{
			Year:  rapid.IntRange(1999, 2101).Draw(t, "periodYear"),
			Month: time.Month(rapid.IntRange(1, 12).Draw(t, "periodMonth")),
		}
		day1 := rapid.IntRange(1, 28).Draw(t, "day1")
		day2 := rapid.IntRange(1, 28).Draw(t, "day2")

		first := IsMutable(p, time.Date(year, month, day1, 0, 0, 0, 0, time.UTC))
		second := IsMutable(p, time.Date(year, month, day2, 23, 59, 59, 0, time.UTC))
		if first != second {
			t.Fatalf("mutability of %s changed with day of month: %v vs %v", p, first, second)
		}

		want := p.Compare(Period{Year: year, Month: month}) >= 0
		if first != want {
			t.Fatalf("IsMutable(%s, %d-%02d) = %v, want %v", p, year, month, first, want)
		}
	})
}

func TestEnsureMutable(t *testing.T) {
	today := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)

	err := EnsureMutable(Period{Year: 2025, Month: time.June}, today, "expenses")
	require.Error(t, err)
	require.True(t, appErrors.HasCode(err, appErrors.ErrPeriodLocked))

	require.NoError(t, EnsureMutable(Period{Year: 2025, Month: time.July}, today, "expenses"))
}

func TestParse(t *testing.T) {
	p, err := Parse("2025-06")
	require.NoError(t, err)
	require.Equal(t, Period{Year: 2025, Month: time.June}, p)

	p, err = Parse(" 2025-6 ")
	require.NoError(t, err)
	require.Equal(t, "2025-06", p.String())

	for _, raw := range []string{"", "2025", "2025-13", "2025-00", "abcd-01", "2025-xx", "1800-01"} {
		_, err := Parse(raw)
		require.Error(t, err, raw)
		require.True(t, appErrors.HasCode(err, appErrors.ErrInvalidInput), raw)
	}
}

func TestNextPrevious(t *testing.T) {
	dec := Period{Year: 2024, Month: time.December}
	require.Equal(t, Period{Year: 2025, Month: time.January}, dec.Next())
	require.Equal(t, dec, dec.Next().Previous())
	require.True(t, dec.Before(dec.Next()))
	require.Equal(t, 0, dec.Compare(dec))
}

func TestPeriodJSON(t *testing.T) {
	type payload struct {
		Period Period `json:"period"`
	}

	raw, err := json.Marshal(payload{Period: Period{Year: 2025, Month: time.March}})
	require.NoError(t, err)
	require.JSONEq(t, `{"period":"2025-03"}`, string(raw))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"period":"2026-11"}`), &decoded))
	require.Equal(t, Period{Year: 2026, Month: time.November}, decoded.Period)

	require.Error(t, json.Unmarshal([]byte(`{"period":"2026-15"}`), &decoded))
}
