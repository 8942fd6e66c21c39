package shared

import (
	"errors"

	"aspen/shared/constant"

	"github.com/lib/pq"
)

func IsPqError(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}

	return false
}

func IsUniqueViolation(err error) bool {
	return IsPqError(err, constant.PqErrorCodeUniqueViolation)
}

func IsFkViolation(err error) bool {
	return IsPqError(err, constant.PqErrorCodeFkViolation)
}
