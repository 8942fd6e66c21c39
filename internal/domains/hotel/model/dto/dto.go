package dto

import (
	"aspen/internal/domains/hotel/model"
	"aspen/shared"
	gDto "aspen/shared/dto"
	gModel "aspen/shared/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type CreateHotelRequest struct {
	Name       string   `json:"name"        validate:"required,max=150"`
	Address    string   `json:"address"     validate:"required,max=255"`
	City       string   `json:"city"        validate:"required,max=100"`
	State      string   `json:"state"       validate:"omitempty,max=100"`
	Country    string   `json:"country"     validate:"required,max=100"`
	PostalCode string   `json:"postal_code" validate:"required,max=20"`
	Phone      string   `json:"phone"       validate:"omitempty,phone"`
	Email      string   `json:"email"       validate:"omitempty,email,max=100"`
	Amenities  []string `json:"amenities"   validate:"omitempty,dive,max=100"`
	Rating     float64  `json:"rating"      validate:"omitempty,gte=1,lte=5"`
}

func (c *CreateHotelRequest) ToModel(user string) model.Hotel {
	return model.Hotel{
		ID:         uuid.NewString(),
		Name:       c.Name,
		Address:    c.Address,
		City:       c.City,
		State:      c.State,
		Country:    c.Country,
		PostalCode: c.PostalCode,
		Phone:      c.Phone,
		Email:      c.Email,
		Amenities:  pq.StringArray(c.Amenities),
		Rating:     decimal.NewFromFloat(c.Rating).Round(1),
		Metadata:   gModel.NewMetadata(user),
	}
}

type UpdateHotelRequest struct {
	Name       string         `db:"name"        json:"name"        validate:"omitempty,max=150"`
	Address    string         `db:"address"     json:"address"     validate:"omitempty,max=255"`
	City       string         `db:"city"        json:"city"        validate:"omitempty,max=100"`
	State      string         `db:"state"       json:"state"       validate:"omitempty,max=100"`
	Country    string         `db:"country"     json:"country"     validate:"omitempty,max=100"`
	PostalCode string         `db:"postal_code" json:"postal_code" validate:"omitempty,max=20"`
	Phone      string         `db:"phone"       json:"phone"       validate:"omitempty,phone"`
	Email      string         `db:"email"       json:"email"       validate:"omitempty,email,max=100"`
	Amenities  pq.StringArray `db:"amenities"   json:"amenities"   validate:"omitempty,dive,max=100"`
	Rating     *float64       `json:"rating"    validate:"omitempty,gte=1,lte=5"`
}

// Fields returns the changed columns, converting rating to its stored form.
func (u *UpdateHotelRequest) Fields(user string) map[string]any {
	fields := shared.TransformFields(*u, user)
	if u.Rating != nil {
		fields[model.FieldRating] = decimal.NewFromFloat(*u.Rating).Round(1)
	}

	return fields
}

func (u *UpdateHotelRequest) IsEmpty() bool {
	return u.Name == "" && u.Address == "" && u.City == "" && u.State == "" && u.Country == "" &&
		u.PostalCode == "" && u.Phone == "" && u.Email == "" && len(u.Amenities) == 0 && u.Rating == nil
}

type HotelResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Address    string   `json:"address"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	Country    string   `json:"country"`
	PostalCode string   `json:"postal_code"`
	Phone      string   `json:"phone"`
	Email      string   `json:"email"`
	Amenities  []string `json:"amenities"`
	Rating     float64  `json:"rating"`
	gDto.Metadata
}

func (r *HotelResponse) FromModel(model model.Hotel) {
	r.ID = model.ID
	r.Name = model.Name
	r.Address = model.Address
	r.City = model.City
	r.State = model.State
	r.Country = model.Country
	r.PostalCode = model.PostalCode
	r.Phone = model.Phone
	r.Email = model.Email
	r.Amenities = []string(model.Amenities)
	r.Rating = model.Rating.InexactFloat64()
	r.Metadata.FromModel(model.Metadata)
}

type GetHotelsResponse struct {
	Hotels    []HotelResponse `json:"hotels"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetHotelsResponse) FromModels(models []model.Hotel, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Hotels = make([]HotelResponse, len(models))
	for i, mod := range models {
		r.Hotels[i].FromModel(mod)
	}
}
