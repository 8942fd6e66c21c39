package dto

import (
	"strings"
	"time"

	"aspen/internal/domains/user/model"
	"aspen/shared"
	"aspen/shared/constant"
	gDto "aspen/shared/dto"
	gModel "aspen/shared/model"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Email        string  `json:"email"                   validate:"required,email"`
	Password     string  `json:"password"                validate:"required,min=8,max=72"`
	Level        string  `json:"level"                   validate:"omitempty,role"`
	FullName     *string `json:"full_name,omitempty"     validate:"omitempty,min=2,max=100"`
	ProfileImage *string `json:"profile_image,omitempty"`
	IsVerified   *bool   `json:"is_verified,omitempty"`
}

func (r *CreateUserRequest) ToModel(username string, hashedPassword string) model.User {
	level := r.Level
	if level == constant.Empty {
		level = constant.RoleGuest
	}

	isVerified := false
	if r.IsVerified != nil {
		isVerified = *r.IsVerified
	}

	return model.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(r.Email)),
		Password:     hashedPassword,
		Level:        level,
		FullName:     r.FullName,
		ProfileImage: r.ProfileImage,
		IsVerified:   isVerified,
		Active:       true,
		Metadata:     gModel.NewMetadata(username),
	}
}

type UserResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Level        string     `json:"level"`
	FullName     *string    `json:"full_name,omitempty"`
	ProfileImage *string    `json:"profile_image,omitempty"`
	IsVerified   bool       `json:"is_verified"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	Active       bool       `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Email = model.Email
	r.Level = model.Level
	r.FullName = model.FullName
	r.ProfileImage = model.ProfileImage
	r.IsVerified = model.IsVerified
	r.LastLogin = model.LastLogin
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

// UpdateUserRequest is applied by an administrator and may change the role.
type UpdateUserRequest struct {
	Level        *string `json:"level,omitempty"         db:"level"         validate:"omitempty,role"`
	FullName     *string `json:"full_name,omitempty"     db:"full_name"     validate:"omitempty,min=2,max=100"`
	ProfileImage *string `json:"profile_image,omitempty" db:"profile_image"`
	IsVerified   *bool   `json:"is_verified,omitempty"   db:"is_verified"`
	Active       *bool   `json:"active,omitempty"        db:"active"`
}

type UpdateProfileRequest struct {
	FullName     *string `json:"full_name,omitempty"     db:"full_name"     validate:"omitempty,min=2,max=100"`
	ProfileImage *string `json:"profile_image,omitempty" db:"profile_image"`
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
