package shared

import (
	"reflect"
	"strconv"

	"aspen/shared/constant"
	"aspen/shared/dto"
	"aspen/shared/timezone"

	"github.com/rs/zerolog/log"
)

// ConvertStringToBool returns nil for an empty or unparsable query value.
func ConvertStringToBool(value string) *bool {
	if value == constant.Empty {
		return nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Warn().Err(err).Str("value", value).Msg("ignoring non-boolean query value")

		return nil
	}

	return &parsed
}

func ConvertStringToInt(value string, fallback int) int {
	if value == constant.Empty {
		return fallback
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Err(err).Str("value", value).Msg("ignoring non-numeric query value")

		return fallback
	}

	return parsed
}

func CalculateTotalPage(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}

	return (total + limit - 1) / limit
}

// TransformFields turns a patch struct into the column map for an update.
// Zero values are skipped; a non-nil pointer is written even when it points
// at a zero value. Fields without a db tag are ignored.
func TransformFields(data any, username string) map[string]any {
	val := reflect.Indirect(reflect.ValueOf(data))
	typ := val.Type()

	fields := make(map[string]any, val.NumField()+2)

	for index := range val.NumField() {
		column := typ.Field(index).Tag.Get("db")
		if column == constant.Empty || column == "-" {
			continue
		}

		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		if field.Kind() == reflect.Pointer {
			field = field.Elem()
		}

		fields[column] = field.Interface()
	}

	fields[constant.FieldModifiedAt] = timezone.Now()
	fields[constant.FieldModifiedBy] = username

	return fields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	group := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}
	group.Filters = append(group.Filters, dto.Filter{
		Table:    table,
		Field:    fieldID,
		Operator: dto.FilterOperatorEq,
		Value:    id,
	})

	return group
}
