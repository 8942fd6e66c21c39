package model

import "aspen/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID         = "id"
	FieldHotelID    = "hotel_id"
	FieldRoomTypeID = "room_type_id"
	FieldRoomNumber = "room_number"
	FieldStatus     = "status"

	StatusAvailable   = "available"
	StatusBooked      = "booked"
	StatusMaintenance = "maintenance"
)

type Room struct {
	ID           string `db:"id"`
	HotelID      string `db:"hotel_id"`
	RoomTypeID   string `db:"room_type_id"`
	RoomNumber   string `db:"room_number"`
	FloorNumber  int    `db:"floor_number"`
	Status       string `db:"status"`
	RoomTypeName string `column:"name"       db:"room_type_name" table:"room_types"`
	model.Metadata
}

func (Room) GetJoinQuery() string {
	return "LEFT JOIN room_types ON room_types.id = rooms.room_type_id"
}
