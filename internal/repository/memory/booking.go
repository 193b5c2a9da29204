package memory

import (
	"context"
	"sort"
	"time"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

type BookingRepository struct{ s *Store }

func (r *BookingRepository) Create(_ context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insert(booking)
}

func (r *BookingRepository) CreateIfFree(_ context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	day := utils.TruncateDay(booking.ScheduledDate)
	for _, b := range r.s.bookings {
		if b.PartnerID != booking.PartnerID || !b.ScheduledDate.Equal(day) || b.Status.IsTerminal() {
			continue
		}
		if utils.SlotsOverlap(b.TimeSlot, booking.TimeSlot) {
			return errs.Markf(models.ErrConflict, "partner %s already has a booking at %s", booking.PartnerID, b.TimeSlot)
		}
	}
	return r.insert(booking)
}

// insert expects r.s.mu to be held.
func (r *BookingRepository) insert(booking *models.Booking) error {
	booking.ID = newID(booking.ID)
	if _, exists := r.s.bookings[booking.ID]; exists {
		return errs.Markf(models.ErrConflict, "booking %s already exists", booking.ID)
	}
	booking.ScheduledDate = utils.TruncateDay(booking.ScheduledDate)
	stamp(&booking.CreatedAt, &booking.UpdatedAt, r.s.now())
	r.s.bookings[booking.ID] = *booking
	return nil
}

func (r *BookingRepository) Get(_ context.Context, id string) (*models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.bookings[id]
	if !ok {
		return nil, errs.Markf(models.ErrNotFound, "booking %s not found", id)
	}
	return &b, nil
}

func (r *BookingRepository) List(_ context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var bookings []models.Booking
	for _, b := range r.s.bookings {
		switch {
		case filter.UserID != "" && b.UserID != filter.UserID,
			filter.PartnerID != "" && b.PartnerID != filter.PartnerID,
			filter.Status != "" && b.Status != filter.Status,
			filter.From != nil && b.ScheduledDate.Before(utils.TruncateDay(*filter.From)),
			filter.To != nil && b.ScheduledDate.After(utils.TruncateDay(*filter.To)):
			continue
		}
		bookings = append(bookings, b)
	}
	sort.SliceStable(bookings, func(i, j int) bool {
		if !bookings[i].ScheduledDate.Equal(bookings[j].ScheduledDate) {
			return bookings[i].ScheduledDate.After(bookings[j].ScheduledDate)
		}
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
	return limit(bookings, filter.Limit), nil
}

func (r *BookingRepository) ListActiveOn(_ context.Context, date time.Time, partnerID string) ([]models.Booking, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	day := utils.TruncateDay(date)
	var bookings []models.Booking
	for _, b := range r.s.bookings {
		if !b.ScheduledDate.Equal(day) || (partnerID != "" && b.PartnerID != partnerID) {
			continue
		}
		if b.Status.IsTerminal() {
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *BookingRepository) UpdateStatus(_ context.Context, booking *models.Booking, from models.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.bookings[booking.ID]
	if !ok {
		return errs.Markf(models.ErrNotFound, "booking %s not found", booking.ID)
	}
	if stored.Status != from {
		return errs.Markf(models.ErrConflict, "booking %s is no longer %s", booking.ID, from)
	}

	stored.Status = booking.Status
	stored.PaymentStatus = booking.PaymentStatus
	stored.ConfirmedAt = booking.ConfirmedAt
	stored.StartedAt = booking.StartedAt
	stored.CompletedAt = booking.CompletedAt
	stored.CancelledAt = booking.CancelledAt
	stored.CancellationReason = booking.CancellationReason
	stored.CancelledBy = booking.CancelledBy
	stamp(nil, &stored.UpdatedAt, r.s.now())
	booking.UpdatedAt = stored.UpdatedAt
	r.s.bookings[booking.ID] = stored
	return nil
}

func (r *BookingRepository) UpdatePayment(_ context.Context, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.bookings[booking.ID]
	if !ok {
		return errs.Markf(models.ErrNotFound, "booking %s not found", booking.ID)
	}
	stored.PaymentStatus = booking.PaymentStatus
	stored.PaymentToken = booking.PaymentToken
	stored.PaymentRedirectURL = booking.PaymentRedirectURL
	stored.PaidAt = booking.PaidAt
	stamp(nil, &stored.UpdatedAt, r.s.now())
	booking.UpdatedAt = stored.UpdatedAt
	r.s.bookings[booking.ID] = stored
	return nil
}

func (r *BookingRepository) CountByStatus(_ context.Context) (map[models.BookingStatus]int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[models.BookingStatus]int64)
	for _, b := range r.s.bookings {
		counts[b.Status]++
	}
	return counts, nil
}

func (r *BookingRepository) GrossRevenue(_ context.Context) (float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var total float64
	for _, b := range r.s.bookings {
		if b.Status == models.BookingStatusCompleted && b.PaymentStatus == models.PaymentStatusPaid {
			total += b.TotalPrice
		}
	}
	return total, nil
}

func (r *BookingRepository) PaymentSummary(_ context.Context) (models.PaymentSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var summary models.PaymentSummary
	for _, b := range r.s.bookings {
		if b.Status == models.BookingStatusCancelled {
			continue
		}
		switch b.PaymentStatus {
		case models.PaymentStatusPaid:
			summary.PaidCount++
			summary.PaidTotal += b.TotalPrice
		case models.PaymentStatusUnpaid:
			summary.UnpaidCount++
			summary.UnpaidTotal += b.TotalPrice
		}
	}
	return summary, nil
}
