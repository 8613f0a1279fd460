// Package repository provides shared helpers for the gorm-backed stores.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// MapGormError converts gorm errors to domain errors so storage concerns
// stay inside the infrastructure layer. notFound is the entity-specific
// domain error substituted for gorm.ErrRecordNotFound.
func MapGormError(err, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}
