// Package gormrepo implements the repositories on MySQL through gorm.
package gormrepo

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/errs"
)

func New(db *gorm.DB) repository.Repositories {
	return repository.Repositories{
		Services:      NewServiceRepository(db),
		Partners:      NewPartnerRepository(db),
		Bookings:      NewBookingRepository(db),
		Users:         NewUserRepository(db),
		Reviews:       NewReviewRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// notFound converts gorm.ErrRecordNotFound into our category and wraps
// everything else with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.Mark(errs.Wrap(err, msg), models.ErrNotFound)
	}
	return errs.Wrap(err, msg)
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
