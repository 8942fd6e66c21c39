package model

import (
	"aspen/shared/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "room_types"
	EntityName = "room_type"

	FieldID            = "id"
	FieldHotelID       = "hotel_id"
	FieldName          = "name"
	FieldPricePerNight = "price_per_night"
	FieldPhotos        = "photos"

	PhotoDirectory = "room-types"
)

type RoomType struct {
	ID            string          `db:"id"`
	HotelID       string          `db:"hotel_id"`
	Name          string          `db:"name"`
	Description   string          `db:"description"`
	MaxOccupancy  int             `db:"max_occupancy"`
	PricePerNight decimal.Decimal `db:"price_per_night"`
	Amenities     pq.StringArray  `db:"amenities"`
	Photos        pq.StringArray  `db:"photos"`
	model.Metadata
}
