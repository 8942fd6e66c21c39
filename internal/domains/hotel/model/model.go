package model

import (
	"aspen/shared/model"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	TableName  = "hotels"
	EntityName = "hotel"

	FieldID         = "id"
	FieldName       = "name"
	FieldCity       = "city"
	FieldCountry    = "country"
	FieldPostalCode = "postal_code"
	FieldEmail      = "email"
	FieldRating     = "rating"
)

type Hotel struct {
	ID         string          `db:"id"`
	Name       string          `db:"name"`
	Address    string          `db:"address"`
	City       string          `db:"city"`
	State      string          `db:"state"`
	Country    string          `db:"country"`
	PostalCode string          `db:"postal_code"`
	Phone      string          `db:"phone"`
	Email      string          `db:"email"`
	Amenities  pq.StringArray  `db:"amenities"`
	Rating     decimal.Decimal `db:"rating"`
	model.Metadata
}
