package dto

import (
	"context"
	"fmt"
	"mime/multipart"

	"aspen/infras/s3"
	roomDto "aspen/internal/domains/room/model/dto"
	"aspen/internal/domains/roomtype/model"
	"aspen/shared"
	gDto "aspen/shared/dto"
	gModel "aspen/shared/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const presignConcurrency = 8

type CreateRoomTypeRequest struct {
	HotelID       string                      `json:"hotel_id"        validate:"required,uuid"`
	Name          string                      `json:"name"            validate:"required,max=100"`
	Description   string                      `json:"description"     validate:"omitempty,max=2000"`
	MaxOccupancy  int                         `json:"max_occupancy"   validate:"required,min=1,max=20"`
	PricePerNight float64                     `json:"price_per_night" validate:"required,gt=0,money"`
	Amenities     []string                    `json:"amenities"       validate:"omitempty,dive,max=100"`
	Rooms         []roomDto.RoomNumberRequest `json:"rooms"           validate:"omitempty,dive"`
}

func (c *CreateRoomTypeRequest) ToModel(user string) model.RoomType {
	return model.RoomType{
		ID:            uuid.NewString(),
		HotelID:       c.HotelID,
		Name:          c.Name,
		Description:   c.Description,
		MaxOccupancy:  c.MaxOccupancy,
		PricePerNight: decimal.NewFromFloat(c.PricePerNight),
		Amenities:     pq.StringArray(c.Amenities),
		Photos:        pq.StringArray{},
		Metadata:      gModel.NewMetadata(user),
	}
}

type UpdateRoomTypeRequest struct {
	Name          string         `db:"name"          json:"name"          validate:"omitempty,max=100"`
	Description   string         `db:"description"   json:"description"   validate:"omitempty,max=2000"`
	MaxOccupancy  int            `db:"max_occupancy" json:"max_occupancy" validate:"omitempty,min=1,max=20"`
	Amenities     pq.StringArray `db:"amenities"     json:"amenities"     validate:"omitempty,dive,max=100"`
	PricePerNight *float64       `json:"price_per_night"              validate:"omitempty,gt=0,money"`
}

func (u *UpdateRoomTypeRequest) IsEmpty() bool {
	return u.Name == "" && u.Description == "" && u.MaxOccupancy == 0 && len(u.Amenities) == 0 && u.PricePerNight == nil
}

func (u *UpdateRoomTypeRequest) Fields(user string) map[string]any {
	fields := shared.TransformFields(*u, user)
	if u.PricePerNight != nil {
		fields[model.FieldPricePerNight] = decimal.NewFromFloat(*u.PricePerNight)
	}

	return fields
}

type UploadPhotoRequest struct {
	Photo     *multipart.FileHeader `validate:"required,mimetypes=image/png image/jpg image/jpeg image/webp,maxfilesize=5"`
	PhotoFile multipart.File        `json:"-"`
}

type Photo struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type RoomTypeResponse struct {
	ID            string   `json:"id"`
	HotelID       string   `json:"hotel_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	MaxOccupancy  int      `json:"max_occupancy"`
	PricePerNight string   `json:"price_per_night"`
	Amenities     []string `json:"amenities"`
	Photos        []Photo  `json:"photos"`
	TotalRooms    int      `json:"total_rooms"`
	gDto.Metadata
}

func (r *RoomTypeResponse) FromModel(model model.RoomType) {
	r.ID = model.ID
	r.HotelID = model.HotelID
	r.Name = model.Name
	r.Description = model.Description
	r.MaxOccupancy = model.MaxOccupancy
	r.PricePerNight = model.PricePerNight.StringFixed(2)
	r.Amenities = []string(model.Amenities)

	r.Photos = make([]Photo, len(model.Photos))
	for i, key := range model.Photos {
		r.Photos[i] = Photo{Key: key}
	}

	r.Metadata.FromModel(model.Metadata)
}

// ResolvePhotos fills the presigned URL of every photo.
func (r *RoomTypeResponse) ResolvePhotos(ctx context.Context, storage s3.S3) error {
	keys := make([]string, len(r.Photos))
	for i, photo := range r.Photos {
		keys[i] = photo.Key
	}

	urls, err := PresignPhotos(ctx, storage, keys)
	if err != nil {
		return err
	}

	for i := range r.Photos {
		r.Photos[i].URL = urls[i]
	}

	return nil
}

// PresignPhotos resolves object keys to temporary URLs, preserving order.
func PresignPhotos(ctx context.Context, storage s3.S3, keys []string) ([]string, error) {
	urls := make([]string, len(keys))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(presignConcurrency)

	for i, key := range keys {
		g.Go(func() error {
			url, err := storage.PresignURL(gctx, key)
			if err != nil {
				return fmt.Errorf("failed to presign photo %s: %w", key, err)
			}

			urls[i] = url

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return urls, nil
}

type GetRoomTypesResponse struct {
	RoomTypes []RoomTypeResponse `json:"room_types"`
	TotalPage int                `json:"total_page"`
	TotalData int                `json:"total_data"`
}

func (r *GetRoomTypesResponse) FromModels(models []model.RoomType, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.RoomTypes = make([]RoomTypeResponse, len(models))
	for i, mod := range models {
		r.RoomTypes[i].FromModel(mod)
	}
}
