package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"aspen/shared/constant"
	"aspen/shared/failure"
	"aspen/shared/timezone"

	val "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	bytesPerMB   = 1024 * 1024
	moneyPlaces  = 2
	tagMimetypes = "mimetypes"
	tagFileSize  = "maxfilesize"
	tagDate      = "date"
	tagPhone     = "phone"
	tagMoney     = "money"
	tagRole      = "role"
)

var (
	validate *val.Validate

	phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-.]{5,29}$`)
)

func uploadHeader(field val.FieldLevel) (multipart.FileHeader, bool) {
	file, ok := field.Field().Interface().(multipart.FileHeader)

	return file, ok
}

// validateMimetypes checks an upload's declared content type against a space separated list.
func validateMimetypes(field val.FieldLevel) bool {
	file, ok := uploadHeader(field)
	if !ok {
		return false
	}

	return slices.Contains(strings.Fields(field.Param()), file.Header.Get(constant.RequestHeaderContentType))
}

// validateFileSize takes the limit in megabytes, fractions allowed.
func validateFileSize(field val.FieldLevel) bool {
	file, ok := uploadHeader(field)
	if !ok {
		return false
	}

	maxSizeMB, err := strconv.ParseFloat(field.Param(), 64)
	if err != nil {
		return false
	}

	return float64(file.Size) <= maxSizeMB*bytesPerMB
}

func validateDate(field val.FieldLevel) bool {
	_, err := timezone.ParseDate(field.Field().String())

	return err == nil
}

func validatePhone(field val.FieldLevel) bool {
	return phonePattern.MatchString(field.Field().String())
}

// validateMoney rejects amounts with more than two decimal places.
func validateMoney(field val.FieldLevel) bool {
	if field.Field().Kind() != reflect.Float64 && field.Field().Kind() != reflect.Float32 {
		return false
	}

	amount := decimal.NewFromFloat(field.Field().Float())

	return amount.Equal(amount.Round(moneyPlaces))
}

func validateRole(field val.FieldLevel) bool {
	return slices.Contains(constant.Roles, field.Field().String())
}

func init() {
	validate = val.New(val.WithRequiredStructEnabled())

	custom := map[string]val.Func{
		tagMimetypes: validateMimetypes,
		tagFileSize:  validateFileSize,
		tagDate:      validateDate,
		tagPhone:     validatePhone,
		tagMoney:     validateMoney,
		tagRole:      validateRole,
	}

	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == constant.Empty {
			return field.Name
		}

		return name
	})
}

// Validate decodes JSON from r into data and validates it.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	if err := json.NewDecoder(r).Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

// ValidateStruct reports a missing required field as KindMissingField and
// every other violation as a plain bad request.
func ValidateStruct[T any](data *T) error {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}

	var valErrors val.ValidationErrors
	if errors.As(err, &valErrors) && len(valErrors) > 0 && valErrors[0].Tag() == "required" {
		return failure.MissingField(valErrors[0].Field()) //nolint:wrapcheck
	}

	return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
}

func ValidateVar(field any, tag string) error {
	if err := validate.Var(field, tag); err != nil {
		return failure.BadRequestFromString(message(err)) //nolint:wrapcheck
	}

	return nil
}
