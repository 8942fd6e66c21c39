package model

import (
	"fmt"
	"math/rand/v2"
	"time"

	"aspen/shared/model"

	"github.com/shopspring/decimal"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID            = "id"
	FieldBookingID     = "booking_id"
	FieldHotelID       = "hotel_id"
	FieldGuestID       = "guest_id"
	FieldRoomTypeID    = "room_type_id"
	FieldCheckInDate   = "check_in_date"
	FieldCheckOutDate  = "check_out_date"
	FieldStatus        = "status"
	FieldPaymentStatus = "payment_status"
	FieldPaymentRef    = "payment_reference"
	FieldCreatedAt     = "created_at"

	RoomTableName  = "booking_rooms"
	RoomEntityName = "booking_room"
	FieldRoomID    = "room_id"
)

const (
	StatusBooked     = "booked"
	StatusCheckedIn  = "checked-in"
	StatusCheckedOut = "checked-out"
	StatusCanceled   = "canceled"
	StatusNoShow     = "no-show"

	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"

	SourceOnline  = "online"
	SourceOffline = "offline"

	ChannelWebsite   = "website"
	ChannelMobileApp = "mobile_app"
	ChannelPhone     = "phone"
	ChannelWalkIn    = "walk_in"
	ChannelAgent     = "agent"
)

// Booking is a reservation of NumberOfRooms rooms of one room type over [CheckInDate, CheckOutDate).
type Booking struct {
	ID                 string          `db:"id"`
	BookingID          string          `db:"booking_id"`
	HotelID            string          `db:"hotel_id"`
	GuestID            string          `db:"guest_id"`
	RoomTypeID         string          `db:"room_type_id"`
	CheckInDate        time.Time       `db:"check_in_date"`
	CheckOutDate       time.Time       `db:"check_out_date"`
	NumberOfRooms      int             `db:"number_of_rooms"`
	NumberOfAdults     int             `db:"number_of_adults"`
	NumberOfChildren   int             `db:"number_of_children"`
	TotalPrice         decimal.Decimal `db:"total_price"`
	TaxAmount          decimal.Decimal `db:"tax_amount"`
	TotalPriceAfterTax decimal.Decimal `db:"total_price_after_tax"`
	Currency           string          `db:"currency"`
	Status             string          `db:"status"`
	PaymentStatus      string          `db:"payment_status"`
	PaymentReference   string          `db:"payment_reference"`
	BookingSource      string          `db:"booking_source"`
	BookingChannel     string          `db:"booking_channel"`
	GuestName          string          `column:"name"  db:"guest_name"     table:"guests"`
	GuestEmail         string          `column:"email" db:"guest_email"    table:"guests"`
	RoomTypeName       string          `column:"name"  db:"room_type_name" table:"room_types"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "LEFT JOIN guests ON guests.id = bookings.guest_id LEFT JOIN room_types ON room_types.id = bookings.room_type_id"
}

// BookingRoom pins a physical room to a booking from check-in onwards.
type BookingRoom struct {
	BookingID  string `db:"booking_id"`
	RoomID     string `db:"room_id"`
	RoomNumber string `column:"room_number" db:"room_number" table:"rooms"`
}

func (BookingRoom) GetJoinQuery() string {
	return "JOIN rooms ON rooms.id = booking_rooms.room_id"
}

const bookingIDLayout = "020106"

// NewBookingID formats prefix, the creation date as DDMMYY and four random digits.
func NewBookingID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%s%04d", prefix, now.Format(bookingIDLayout), rand.IntN(10000)) //nolint:gosec
}
