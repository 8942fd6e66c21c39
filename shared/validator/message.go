package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

const anonymousField = "value"

var messages = map[string]string{
	"required":   "{field} is required",
	"gt":         "{field} must be greater than {param}",
	"gte":        "{field} must be greater than or equal to {param}",
	"lte":        "{field} must be less than or equal to {param}",
	"oneof":      "{field} must be one of {param}",
	"max":        "{field} must be at most {param}",
	"min":        "{field} must be at least {param}",
	"email":      "{field} must be a valid email address",
	"uuid":       "{field} must be a valid UUID",
	"gtfield":    "{field} must be after {param}",
	tagDate:      "{field} must be a date in YYYY-MM-DD format",
	tagPhone:     "{field} must be a valid phone number",
	tagMoney:     "{field} must have at most two decimal places",
	tagRole:      "{field} must be a known role",
	tagMimetypes: "{field} must be one of {param}",
	tagFileSize:  "{field} must not exceed {param} MB",
}

// message renders the first violation with a known template.
func message(err error) string {
	var valErrors val.ValidationErrors
	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		tmpl, ok := messages[valErr.Tag()]
		if !ok {
			continue
		}

		field := valErr.Field()
		if field == "" {
			field = anonymousField
		}

		return strings.NewReplacer("{field}", field, "{param}", valErr.Param()).Replace(tmpl)
	}

	return valErrors.Error()
}
