package repository

import (
	"context"
	"time"

	"carenow-backend/internal/models"
)

// All repository interfaces in one file. Implementations return errors marked
// with models.ErrNotFound when a row does not exist.
type (
	ServiceRepository interface {
		Create(ctx context.Context, service *models.Service) error
		Get(ctx context.Context, id string) (*models.Service, error)
		Update(ctx context.Context, service *models.Service) error
		List(ctx context.Context, activeOnly bool) ([]models.Service, error)
	}

	PartnerRepository interface {
		Create(ctx context.Context, partner *models.Partner) error
		Get(ctx context.Context, id string) (*models.Partner, error)
		GetByUserID(ctx context.Context, userID string) (*models.Partner, error)
		Update(ctx context.Context, partner *models.Partner) error
		// ListAvailable returns verified, available partners offering serviceID.
		ListAvailable(ctx context.Context, serviceID string) ([]models.Partner, error)
		ListUnverified(ctx context.Context) ([]models.Partner, error)
		CountActive(ctx context.Context) (int64, error)
	}

	BookingRepository interface {
		Create(ctx context.Context, booking *models.Booking) error
		// CreateIfFree inserts booking unless its partner already holds an
		// active booking overlapping the same day and slot, in which case it
		// returns an error marked with models.ErrConflict. The check and the
		// insert are atomic.
		CreateIfFree(ctx context.Context, booking *models.Booking) error
		Get(ctx context.Context, id string) (*models.Booking, error)
		List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
		// ListActiveOn returns pending, confirmed and in-progress bookings on
		// the given day. An empty partnerID means every partner.
		ListActiveOn(ctx context.Context, date time.Time, partnerID string) ([]models.Booking, error)
		// UpdateStatus writes the status and lifecycle columns of booking only
		// if the stored status still equals from. Otherwise it returns an
		// error marked with models.ErrConflict.
		UpdateStatus(ctx context.Context, booking *models.Booking, from models.BookingStatus) error
		UpdatePayment(ctx context.Context, booking *models.Booking) error
		CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error)
		// GrossRevenue sums completed, paid bookings.
		GrossRevenue(ctx context.Context) (float64, error)
		PaymentSummary(ctx context.Context) (models.PaymentSummary, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *models.User) error
		Get(ctx context.Context, id string) (*models.User, error)
		GetByEmail(ctx context.Context, email string) (*models.User, error)
		GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
		Update(ctx context.Context, user *models.User) error
		Delete(ctx context.Context, id string) error
	}

	ReviewRepository interface {
		// Create stores the review and folds its rating into the partner's
		// average in the same unit of work.
		Create(ctx context.Context, review *models.Review) error
		Get(ctx context.Context, id string) (*models.Review, error)
		GetByBooking(ctx context.Context, bookingID string) (*models.Review, error)
		// Update replaces the review; previousRating is taken back out of the
		// partner's average before the new rating goes in.
		Update(ctx context.Context, review *models.Review, previousRating float64) error
		ListForPartner(ctx context.Context, partnerID string, limit int) ([]models.Review, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *models.Notification) error
		ListForUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
		MarkRead(ctx context.Context, userID, id string) error
		MarkAllRead(ctx context.Context, userID string) error
		// GetPreference falls back to the defaults when nothing was saved.
		GetPreference(ctx context.Context, userID string) (models.NotificationPreference, error)
		SavePreference(ctx context.Context, pref *models.NotificationPreference) error
	}
)

// Repositories bundles one implementation of every repository.
type Repositories struct {
	Services      ServiceRepository
	Partners      PartnerRepository
	Bookings      BookingRepository
	Users         UserRepository
	Reviews       ReviewRepository
	Notifications NotificationRepository
}

// DefaultListLimit caps listings when the caller passes no limit.
const DefaultListLimit = 100

func Limit(n int) int {
	if n <= 0 || n > DefaultListLimit {
		return DefaultListLimit
	}
	return n
}
