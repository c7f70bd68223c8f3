// Package repository implements the service repositories on GORM/Postgres.
package repository

import (
	"errors"

	"github.com/Govind-619/CampusDine/services"
	"gorm.io/gorm"
)

// translate maps gorm's not-found onto the repository sentinel the services
// branch on; anything else passes through as-is (treated as transient
// upstream).
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNoRows
	}
	return err
}
