package dto

import (
	"strings"

	"aspen/internal/domains/guest/model"
	"aspen/shared"
	gDto "aspen/shared/dto"
	gModel "aspen/shared/model"

	"github.com/google/uuid"
)

type GuestRequest struct {
	Name    string `json:"name"    validate:"required,max=150"`
	Email   string `json:"email"   validate:"required,email,max=100"`
	Phone   string `json:"phone"   validate:"required,phone"`
	Address string `json:"address" validate:"omitempty,max=255"`
}

// ToModel normalises the email, which is the guest's identity.
func (g *GuestRequest) ToModel(user string) model.Guest {
	return model.Guest{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(g.Name),
		Email:    strings.ToLower(strings.TrimSpace(g.Email)),
		Phone:    strings.TrimSpace(g.Phone),
		Address:  g.Address,
		Metadata: gModel.NewMetadata(user),
	}
}

type GuestResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Address  string   `json:"address"`
	Bookings []string `json:"bookings,omitempty"`
	gDto.Metadata
}

func (r *GuestResponse) FromModel(model model.Guest) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Phone = model.Phone
	r.Address = model.Address
	r.Metadata.FromModel(model.Metadata)
}

type GetGuestsResponse struct {
	Guests    []GuestResponse `json:"guests"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetGuestsResponse) FromModels(models []model.Guest, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Guests = make([]GuestResponse, len(models))
	for i, mod := range models {
		r.Guests[i].FromModel(mod)
	}
}
