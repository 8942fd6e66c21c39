package validator_test

import (
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"aspen/shared/failure"
	"aspen/shared/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hotelRequest struct {
	Name  string  `json:"name"  validate:"required,max=20"`
	Email string  `json:"email" validate:"omitempty,email"`
	Phone string  `json:"phone" validate:"omitempty,phone"`
	Rate  float64 `json:"rate"  validate:"omitempty,gt=0,money"`
	Stars int     `json:"stars" validate:"omitempty,gte=1,lte=5"`
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name     string
		data     hotelRequest
		wantMsg  string
		wantKind string
	}{
		{name: "valid", data: hotelRequest{Name: "Aspen", Phone: "+1 (970) 555-0100", Rate: 189.5, Stars: 4}},
		{name: "missing name", data: hotelRequest{}, wantMsg: "name is required", wantKind: failure.KindMissingField},
		{name: "too long", data: hotelRequest{Name: strings.Repeat("x", 21)}, wantMsg: "name must be at most 20"},
		{name: "bad email", data: hotelRequest{Name: "Aspen", Email: "front-desk"}, wantMsg: "email must be a valid email address"},
		{name: "bad phone", data: hotelRequest{Name: "Aspen", Phone: "call us"}, wantMsg: "phone must be a valid phone number"},
		{name: "fractional cents", data: hotelRequest{Name: "Aspen", Rate: 99.999}, wantMsg: "rate must have at most two decimal places"},
		{name: "stars out of range", data: hotelRequest{Name: "Aspen", Stars: 6}, wantMsg: "stars must be less than or equal to 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&tt.data)
			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			require.EqualError(t, err, tt.wantMsg)
			assert.Equal(t, 400, failure.GetCode(err))
			assert.Equal(t, tt.wantKind, failure.GetKind(err))
		})
	}
}

type stayRequest struct {
	CheckInDate  string `json:"check_in_date"  validate:"required,date"`
	CheckOutDate string `json:"check_out_date" validate:"required,date"`
}

func TestValidate_DecodesBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid stay", body: `{"check_in_date":"2024-03-01","check_out_date":"2024-03-03"}`},
		{name: "leap day that does not exist", body: `{"check_in_date":"2023-02-29","check_out_date":"2023-03-03"}`, wantErr: "check_in_date must be a date in YYYY-MM-DD format"},
		{name: "malformed json", body: `{"check_in_date":`, wantErr: "failed to decode request body"},
		{name: "empty object", body: `{}`, wantErr: "check_in_date is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req stayRequest

			err := validator.Validate(strings.NewReader(tt.body), &req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "2024-03-01", req.CheckInDate)

				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type photoUpload struct {
	Photo *multipart.FileHeader `validate:"required,mimetypes=image/png image/jpeg,maxfilesize=1"`
}

func upload(contentType string, size int64) *multipart.FileHeader {
	header := textproto.MIMEHeader{}
	header.Set("Content-Type", contentType)

	return &multipart.FileHeader{Filename: "suite.png", Header: header, Size: size}
}

func TestValidateStruct_Uploads(t *testing.T) {
	tests := []struct {
		name    string
		photo   *multipart.FileHeader
		wantMsg string
	}{
		{name: "png within limit", photo: upload("image/png", 512*1024)},
		{name: "wrong type", photo: upload("application/pdf", 1024), wantMsg: "Photo must be one of image/png image/jpeg"},
		{name: "too large", photo: upload("image/jpeg", 2*1024*1024), wantMsg: "Photo must not exceed 1 MB"},
		{name: "missing", wantMsg: "Photo is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateStruct(&photoUpload{Photo: tt.photo})
			if tt.wantMsg == "" {
				assert.NoError(t, err)

				return
			}

			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, validator.ValidateVar("", "omitempty,email"))
	assert.NoError(t, validator.ValidateVar("guest@example.com", "omitempty,email"))
	assert.EqualError(t, validator.ValidateVar("guest", "omitempty,email"), "value must be a valid email address")
	assert.NoError(t, validator.ValidateVar("housekeeping", "role"))
	assert.EqualError(t, validator.ValidateVar("superadmin", "role"), "value must be a known role")
}
