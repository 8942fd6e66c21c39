package pricing_test

import (
	"testing"
	"time"

	"aspen/internal/domains/booking/pricing"
	"aspen/shared/failure"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}

	return t
}

func TestCalculator_Price(t *testing.T) {
	calc := pricing.New(decimal.RequireFromString("0.17"))

	tests := []struct {
		name      string
		price     string
		checkIn   string
		checkOut  string
		rooms     int
		wantNight int
		wantSub   string
		wantTax   string
		wantTotal string
		wantKind  string
	}{
		{
			name: "two rooms two nights", price: "100", checkIn: "2024-03-01", checkOut: "2024-03-03", rooms: 2,
			wantNight: 2, wantSub: "400", wantTax: "68", wantTotal: "468",
		},
		{
			name: "single night", price: "89.99", checkIn: "2024-02-28", checkOut: "2024-02-29", rooms: 1,
			wantNight: 1, wantSub: "89.99", wantTax: "15.2983", wantTotal: "105.2883",
		},
		{
			name: "crosses month end in a leap year", price: "120", checkIn: "2024-02-27", checkOut: "2024-03-02", rooms: 1,
			wantNight: 4, wantSub: "480", wantTax: "81.6", wantTotal: "561.6",
		},
		{name: "same day", price: "100", checkIn: "2024-03-01", checkOut: "2024-03-01", rooms: 1, wantKind: failure.KindInvalidDateRange},
		{name: "reversed", price: "100", checkIn: "2024-03-05", checkOut: "2024-03-01", rooms: 1, wantKind: failure.KindInvalidDateRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := calc.Price(decimal.RequireFromString(tt.price), date(tt.checkIn), date(tt.checkOut), tt.rooms)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.True(t, failure.IsKind(err, tt.wantKind))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantNight, res.Nights)
			assert.True(t, decimal.RequireFromString(tt.wantSub).Equal(res.Subtotal), "subtotal %s", res.Subtotal)
			assert.True(t, decimal.RequireFromString(tt.wantTax).Equal(res.Tax), "tax %s", res.Tax)
			assert.True(t, decimal.RequireFromString(tt.wantTotal).Equal(res.Total), "total %s", res.Total)
		})
	}
}

func TestBreakdown_RoundedIsHalfUpAtDisplayOnly(t *testing.T) {
	calc := pricing.New(decimal.RequireFromString("0.17"))

	res, err := calc.Price(decimal.RequireFromString("89.99"), date("2024-02-28"), date("2024-02-29"), 1)
	require.NoError(t, err)

	rounded := res.Rounded()

	assert.Equal(t, "15.30", rounded.Tax.StringFixed(2))
	assert.Equal(t, "105.29", rounded.Total.StringFixed(2))
	assert.Equal(t, "105.2883", res.Total.String())

	half := pricing.Breakdown{Total: decimal.RequireFromString("10.005")}.Rounded()
	assert.Equal(t, "10.01", half.Total.StringFixed(2))
}

func TestNights_RoundTrip(t *testing.T) {
	calc := pricing.New(decimal.RequireFromString("0.17"))
	start := date("2024-01-01")

	for n := 1; n <= 60; n++ {
		end := start.AddDate(0, 0, n)

		res, err := calc.Price(decimal.NewFromInt(50), start, end, 1)
		require.NoError(t, err)

		assert.Equal(t, n, res.Nights)
		assert.Equal(t, pricing.Nights(start, end), res.Nights)
	}
}

func TestNights_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	checkIn := time.Date(2024, 3, 10, 23, 30, 0, 0, loc)
	checkOut := time.Date(2024, 3, 11, 0, 15, 0, 0, loc)

	assert.Equal(t, 1, pricing.Nights(checkIn, checkOut))
}
