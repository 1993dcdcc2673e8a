package repositories

import (
	"errors"

	"vastraa/internal/apperrors"

	"gorm.io/gorm"
)

// classify turns a GORM error into a classified application error.
// notFound is used when the record does not exist.
func classify(err error, notFound *apperrors.Error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperrors.Remote(message, err)
}
