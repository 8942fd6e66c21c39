// Package pricing turns a nightly rate and a stay into a price breakdown.
package pricing

import (
	"time"

	"aspen/config"
	"aspen/shared/failure"
	"aspen/shared/timezone"

	"github.com/shopspring/decimal"
)

const displayPlaces = 2

// Breakdown keeps full precision; use Rounded for anything shown or charged.
type Breakdown struct {
	Nights        int             `json:"nights"`
	RoomCount     int             `json:"room_count"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
}

// Rounded rounds the money fields half-up to cents.
func (b Breakdown) Rounded() Breakdown {
	b.PricePerNight = b.PricePerNight.Round(displayPlaces)
	b.Subtotal = b.Subtotal.Round(displayPlaces)
	b.Tax = b.Tax.Round(displayPlaces)
	b.Total = b.Total.Round(displayPlaces)

	return b
}

type Calculator struct {
	taxRate decimal.Decimal
}

func New(taxRate decimal.Decimal) *Calculator {
	return &Calculator{taxRate: taxRate}
}

func NewFromConfig(cfg *config.Config) *Calculator {
	return New(decimal.NewFromFloat(cfg.Booking.TaxRate))
}

func (c *Calculator) TaxRate() decimal.Decimal {
	return c.taxRate
}

// Price charges pricePerNight for every room and night of the stay, plus tax.
func (c *Calculator) Price(pricePerNight decimal.Decimal, checkIn, checkOut time.Time, roomCount int) (Breakdown, error) {
	nights := Nights(checkIn, checkOut)
	if nights <= 0 {
		return Breakdown{}, failure.InvalidDateRange("check-out date must be after check-in date") // nolint:wrapcheck
	}

	if roomCount <= 0 {
		return Breakdown{}, failure.BadRequestFromString("number of rooms must be at least 1") // nolint:wrapcheck
	}

	subtotal := pricePerNight.Mul(decimal.NewFromInt(int64(roomCount))).Mul(decimal.NewFromInt(int64(nights)))
	tax := subtotal.Mul(c.taxRate)

	return Breakdown{
		Nights:        nights,
		RoomCount:     roomCount,
		PricePerNight: pricePerNight,
		TaxRate:       c.taxRate,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         subtotal.Add(tax),
	}, nil
}

// Nights counts calendar days between the two dates, ignoring time of day.
func Nights(checkIn, checkOut time.Time) int {
	return int(timezone.DateOf(checkOut).Sub(timezone.DateOf(checkIn)).Hours() / 24)
}
