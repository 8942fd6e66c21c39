package dto

import (
	"strings"
	"time"

	"aspen/internal/domains/booking/availability"
	"aspen/internal/domains/booking/model"
	"aspen/internal/domains/booking/pricing"
	guestDto "aspen/internal/domains/guest/model/dto"
	"aspen/shared"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	"aspen/shared/failure"
	"aspen/shared/timezone"
)

type CreateBookingRequest struct {
	RoomTypeID       string                `json:"room_type_id"       validate:"required,uuid"`
	CheckInDate      string                `json:"check_in_date"      validate:"required,date"`
	CheckOutDate     string                `json:"check_out_date"     validate:"required,date"`
	NumberOfRooms    int                   `json:"number_of_rooms"    validate:"required,min=1,max=20"`
	NumberOfAdults   int                   `json:"number_of_adults"   validate:"required,min=1"`
	NumberOfChildren int                   `json:"number_of_children" validate:"omitempty,min=0"`
	Guest            guestDto.GuestRequest `json:"guest"`
	BookingSource    string                `json:"booking_source"     validate:"omitempty,oneof=online offline"`
	BookingChannel   string                `json:"booking_channel"    validate:"omitempty,oneof=website mobile_app phone walk_in agent"`
}

// Validate repeats the required-field checks for callers that bypass the HTTP validator.
func (c *CreateBookingRequest) Validate() error {
	required := []struct {
		field string
		empty bool
	}{
		{"room_type_id", c.RoomTypeID == ""},
		{"check_in_date", c.CheckInDate == ""},
		{"check_out_date", c.CheckOutDate == ""},
		{"number_of_rooms", c.NumberOfRooms <= 0},
		{"number_of_adults", c.NumberOfAdults <= 0},
		{"guest.name", strings.TrimSpace(c.Guest.Name) == ""},
		{"guest.email", strings.TrimSpace(c.Guest.Email) == ""},
		{"guest.phone", strings.TrimSpace(c.Guest.Phone) == ""},
	}

	for _, r := range required {
		if r.empty {
			return failure.MissingField(r.field) // nolint:wrapcheck
		}
	}

	return nil
}

func (c *CreateBookingRequest) Source() string {
	if c.BookingSource == "" {
		return model.SourceOnline
	}

	return c.BookingSource
}

func (c *CreateBookingRequest) Channel() string {
	if c.BookingChannel == "" {
		return model.ChannelWebsite
	}

	return c.BookingChannel
}

type StayRequest struct {
	CheckInDate  string `json:"check_in_date"  validate:"required,date"`
	CheckOutDate string `json:"check_out_date" validate:"required,date"`
}

type QuotePriceRequest struct {
	RoomTypeID    string `json:"room_type_id"    validate:"required,uuid"`
	NumberOfRooms int    `json:"number_of_rooms" validate:"required,min=1,max=20"`
	StayRequest
}

type CheckAvailabilityRequest struct {
	HotelID        string `json:"hotel_id"        validate:"required,uuid"`
	RequestedRooms int    `json:"requested_rooms" validate:"required,min=1,max=20"`
	StayRequest
}

type CheckInRequest struct {
	RoomIDs []string `json:"room_ids" validate:"required,min=1,dive,uuid"`
}

type CalendarRequest struct {
	HotelID string `json:"hotel_id" validate:"required,uuid"`
	Year    int    `json:"year"     validate:"required,min=2000,max=2100"`
	Month   int    `json:"month"    validate:"required,min=1,max=12"`
	Status  string `json:"status"   validate:"omitempty,oneof=booked checked-in checked-out canceled no-show"`
}

// Range is the half-open month [first day, first day of next month).
func (c *CalendarRequest) Range() (time.Time, time.Time) {
	from := time.Date(c.Year, time.Month(c.Month), 1, 0, 0, 0, 0, time.UTC)

	return from, from.AddDate(0, 1, 0)
}

// ParseStay parses both dates and enforces checkOut > checkIn.
func ParseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	if checkIn == "" {
		return time.Time{}, time.Time{}, failure.MissingField("check_in_date") // nolint:wrapcheck
	}

	if checkOut == "" {
		return time.Time{}, time.Time{}, failure.MissingField("check_out_date") // nolint:wrapcheck
	}

	in, err := timezone.ParseDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, failure.InvalidDateRange("check_in_date must be formatted as YYYY-MM-DD") // nolint:wrapcheck
	}

	out, err := timezone.ParseDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, failure.InvalidDateRange("check_out_date must be formatted as YYYY-MM-DD") // nolint:wrapcheck
	}

	if err = availability.ValidateRange(in, out); err != nil {
		return time.Time{}, time.Time{}, err //nolint:wrapcheck
	}

	return in, out, nil
}

type PriceBreakdown struct {
	Nights        int    `json:"nights"`
	RoomCount     int    `json:"room_count"`
	PricePerNight string `json:"price_per_night"`
	TaxRate       string `json:"tax_rate"`
	Subtotal      string `json:"subtotal"`
	Tax           string `json:"tax"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
}

func (p *PriceBreakdown) FromBreakdown(breakdown pricing.Breakdown, currency string) {
	rounded := breakdown.Rounded()

	p.Nights = rounded.Nights
	p.RoomCount = rounded.RoomCount
	p.PricePerNight = rounded.PricePerNight.StringFixed(2)
	p.TaxRate = rounded.TaxRate.String()
	p.Subtotal = rounded.Subtotal.StringFixed(2)
	p.Tax = rounded.Tax.StringFixed(2)
	p.Total = rounded.Total.StringFixed(2)
	p.Currency = currency
}

type QuotePriceResponse struct {
	RoomTypeID   string                    `json:"room_type_id"`
	CheckInDate  string                    `json:"check_in_date"`
	CheckOutDate string                    `json:"check_out_date"`
	Price        PriceBreakdown            `json:"price"`
	Availability availability.Availability `json:"availability"`
}

type CreateBookingResponse struct {
	BookingID       string         `json:"booking_id"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"payment_status"`
	PaymentIntentID string         `json:"payment_intent_id"`
	ClientSecret    string         `json:"client_secret"`
	Price           PriceBreakdown `json:"price"`
}

type CheckoutSessionResponse struct {
	BookingID string `json:"booking_id"`
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

type BookingResponse struct {
	ID                 string   `json:"id"`
	BookingID          string   `json:"booking_id"`
	HotelID            string   `json:"hotel_id"`
	GuestID            string   `json:"guest_id"`
	GuestName          string   `json:"guest_name"`
	GuestEmail         string   `json:"guest_email"`
	RoomTypeID         string   `json:"room_type_id"`
	RoomTypeName       string   `json:"room_type_name"`
	CheckInDate        string   `json:"check_in_date"`
	CheckOutDate       string   `json:"check_out_date"`
	NumberOfRooms      int      `json:"number_of_rooms"`
	NumberOfAdults     int      `json:"number_of_adults"`
	NumberOfChildren   int      `json:"number_of_children"`
	TotalPrice         string   `json:"total_price"`
	TaxAmount          string   `json:"tax_amount"`
	TotalPriceAfterTax string   `json:"total_price_after_tax"`
	Currency           string   `json:"currency"`
	Status             string   `json:"status"`
	PaymentStatus      string   `json:"payment_status"`
	BookingSource      string   `json:"booking_source"`
	BookingChannel     string   `json:"booking_channel"`
	RoomNumbers        []string `json:"room_numbers"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.BookingID = model.BookingID
	r.HotelID = model.HotelID
	r.GuestID = model.GuestID
	r.GuestName = model.GuestName
	r.GuestEmail = model.GuestEmail
	r.RoomTypeID = model.RoomTypeID
	r.RoomTypeName = model.RoomTypeName
	r.CheckInDate = model.CheckInDate.Format(constant.DateOnlyFormat)
	r.CheckOutDate = model.CheckOutDate.Format(constant.DateOnlyFormat)
	r.NumberOfRooms = model.NumberOfRooms
	r.NumberOfAdults = model.NumberOfAdults
	r.NumberOfChildren = model.NumberOfChildren
	r.TotalPrice = model.TotalPrice.StringFixed(2)
	r.TaxAmount = model.TaxAmount.StringFixed(2)
	r.TotalPriceAfterTax = model.TotalPriceAfterTax.StringFixed(2)
	r.Currency = model.Currency
	r.Status = model.Status
	r.PaymentStatus = model.PaymentStatus
	r.BookingSource = model.BookingSource
	r.BookingChannel = model.BookingChannel
	r.RoomNumbers = []string{}
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type CalendarEntry struct {
	BookingID     string   `json:"booking_id"`
	GuestName     string   `json:"guest_name"`
	RoomTypeName  string   `json:"room_type_name"`
	CheckInDate   string   `json:"check_in_date"`
	CheckOutDate  string   `json:"check_out_date"`
	NumberOfRooms int      `json:"number_of_rooms"`
	Status        string   `json:"status"`
	RoomNumbers   []string `json:"room_numbers,omitempty"`
}

type CalendarResponse struct {
	HotelID  string          `json:"hotel_id"`
	Year     int             `json:"year"`
	Month    int             `json:"month"`
	Bookings []CalendarEntry `json:"bookings"`
}

// FromModels attaches room numbers only to checked-in and checked-out bookings.
func (r *CalendarResponse) FromModels(models []model.Booking, rooms map[string][]string) {
	r.Bookings = make([]CalendarEntry, len(models))

	for i, mod := range models {
		entry := CalendarEntry{
			BookingID:     mod.BookingID,
			GuestName:     mod.GuestName,
			RoomTypeName:  mod.RoomTypeName,
			CheckInDate:   mod.CheckInDate.Format(constant.DateOnlyFormat),
			CheckOutDate:  mod.CheckOutDate.Format(constant.DateOnlyFormat),
			NumberOfRooms: mod.NumberOfRooms,
			Status:        mod.Status,
		}

		if mod.Status == model.StatusCheckedIn || mod.Status == model.StatusCheckedOut {
			entry.RoomNumbers = rooms[mod.ID]
		}

		r.Bookings[i] = entry
	}
}
