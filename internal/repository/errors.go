package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a tenant-scoped record does not exist
var ErrNotFound = errors.New("record not found")

// translateError maps gorm errors to repository errors
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
