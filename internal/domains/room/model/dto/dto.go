package dto

import (
	"aspen/internal/domains/room/model"
	"aspen/shared"
	gDto "aspen/shared/dto"
	gModel "aspen/shared/model"

	"github.com/google/uuid"
)

type RoomNumberRequest struct {
	RoomNumber  string `json:"room_number"  validate:"required,max=20"`
	FloorNumber int    `json:"floor_number" validate:"omitempty,min=0,max=200"`
}

// ToModel builds an available room of the given room type.
func (r *RoomNumberRequest) ToModel(hotelID, roomTypeID, user string) model.Room {
	return model.Room{
		ID:          uuid.NewString(),
		HotelID:     hotelID,
		RoomTypeID:  roomTypeID,
		RoomNumber:  r.RoomNumber,
		FloorNumber: r.FloorNumber,
		Status:      model.StatusAvailable,
		Metadata:    gModel.NewMetadata(user),
	}
}

type CreateRoomRequest struct {
	RoomTypeID string `json:"room_type_id" validate:"required,uuid"`
	RoomNumberRequest
}

type UpdateRoomRequest struct {
	RoomNumber  string `db:"room_number"  json:"room_number"  validate:"omitempty,max=20"`
	FloorNumber *int   `db:"floor_number" json:"floor_number" validate:"omitempty,min=0,max=200"`
}

func (u *UpdateRoomRequest) IsEmpty() bool {
	return u.RoomNumber == "" && u.FloorNumber == nil
}

type UpdateRoomStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available maintenance"`
}

type RoomResponse struct {
	ID           string `json:"id"`
	HotelID      string `json:"hotel_id"`
	RoomTypeID   string `json:"room_type_id"`
	RoomTypeName string `json:"room_type_name"`
	RoomNumber   string `json:"room_number"`
	FloorNumber  int    `json:"floor_number"`
	Status       string `json:"status"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.HotelID = model.HotelID
	r.RoomTypeID = model.RoomTypeID
	r.RoomTypeName = model.RoomTypeName
	r.RoomNumber = model.RoomNumber
	r.FloorNumber = model.FloorNumber
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
