package gormrepo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = newID(booking.ID)
	return errs.Wrap(r.db.WithContext(ctx).Create(booking).Error, "failed to create booking")
}

// CreateIfFree locks the partner row so concurrent submits for the same
// partner queue up behind the overlap check.
func (r *BookingRepository) CreateIfFree(ctx context.Context, booking *models.Booking) error {
	booking.ID = newID(booking.ID)
	day := utils.TruncateDay(booking.ScheduledDate)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var partner models.Partner
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&partner, "id = ?", booking.PartnerID).Error
		if err != nil {
			return notFound(err, "failed to lock partner")
		}

		var active []models.Booking
		err = tx.Select("id", "time_slot").
			Where("partner_id = ? AND scheduled_date = ?", booking.PartnerID, day).
			Where("status IN ?", models.ActiveStatuses).
			Find(&active).Error
		if err != nil {
			return errs.Wrap(err, "failed to check partner schedule")
		}
		for _, b := range active {
			if utils.SlotsOverlap(b.TimeSlot, booking.TimeSlot) {
				return errs.Markf(models.ErrConflict, "partner %s already has a booking at %s", booking.PartnerID, b.TimeSlot)
			}
		}

		return errs.Wrap(tx.Create(booking).Error, "failed to create booking")
	})
}

func (r *BookingRepository) Get(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get booking")
	}
	return &booking, nil
}

func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.PartnerID != "" {
		q = q.Where("partner_id = ?", filter.PartnerID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("scheduled_date >= ?", utils.TruncateDay(*filter.From))
	}
	if filter.To != nil {
		q = q.Where("scheduled_date <= ?", utils.TruncateDay(*filter.To))
	}

	var bookings []models.Booking
	err := q.Order("scheduled_date DESC, created_at DESC").Limit(repository.Limit(filter.Limit)).Find(&bookings).Error
	if err != nil {
		return nil, errs.Wrap(err, "failed to list bookings")
	}
	return bookings, nil
}

func (r *BookingRepository) ListActiveOn(ctx context.Context, date time.Time, partnerID string) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).
		Where("scheduled_date = ?", utils.TruncateDay(date)).
		Where("status IN ?", models.ActiveStatuses)
	if partnerID != "" {
		q = q.Where("partner_id = ?", partnerID)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, errs.Wrap(err, "failed to list active bookings")
	}
	return bookings, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, booking *models.Booking, from models.BookingStatus) error {
	booking.UpdatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status = ?", booking.ID, from).
		Updates(map[string]interface{}{
			"status":              booking.Status,
			"payment_status":      booking.PaymentStatus,
			"confirmed_at":        booking.ConfirmedAt,
			"started_at":          booking.StartedAt,
			"completed_at":        booking.CompletedAt,
			"cancelled_at":        booking.CancelledAt,
			"cancellation_reason": booking.CancellationReason,
			"cancelled_by":        booking.CancelledBy,
			"updated_at":          booking.UpdatedAt,
		})
	if res.Error != nil {
		return errs.Wrap(res.Error, "failed to update booking status")
	}
	if res.RowsAffected == 0 {
		// Either the row is gone or someone moved it first.
		if _, err := r.Get(ctx, booking.ID); err != nil {
			return err
		}
		return errs.Markf(models.ErrConflict, "booking %s is no longer %s", booking.ID, from)
	}
	return nil
}

func (r *BookingRepository) UpdatePayment(ctx context.Context, booking *models.Booking) error {
	booking.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"payment_status":       booking.PaymentStatus,
			"payment_token":        booking.PaymentToken,
			"payment_redirect_url": booking.PaymentRedirectURL,
			"paid_at":              booking.PaidAt,
			"updated_at":           booking.UpdatedAt,
		}).Error
	return errs.Wrap(err, "failed to update booking payment")
}

func (r *BookingRepository) CountByStatus(ctx context.Context) (map[models.BookingStatus]int64, error) {
	var rows []struct {
		Status models.BookingStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, errs.Wrap(err, "failed to count bookings")
	}

	counts := make(map[models.BookingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *BookingRepository) GrossRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("status = ? AND payment_status = ?", models.BookingStatusCompleted, models.PaymentStatusPaid).
		Select("COALESCE(SUM(total_price), 0)").
		Scan(&total).Error
	return total, errs.Wrap(err, "failed to sum revenue")
}

func (r *BookingRepository) PaymentSummary(ctx context.Context) (models.PaymentSummary, error) {
	var rows []struct {
		PaymentStatus models.PaymentStatus
		Total         int64
		Amount        float64
	}
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Select("payment_status, COUNT(*) AS total, COALESCE(SUM(total_price), 0) AS amount").
		Where("status <> ?", models.BookingStatusCancelled).
		Group("payment_status").
		Scan(&rows).Error
	if err != nil {
		return models.PaymentSummary{}, errs.Wrap(err, "failed to summarize payments")
	}

	var summary models.PaymentSummary
	for _, row := range rows {
		switch row.PaymentStatus {
		case models.PaymentStatusPaid:
			summary.PaidCount, summary.PaidTotal = row.Total, row.Amount
		case models.PaymentStatusUnpaid:
			summary.UnpaidCount, summary.UnpaidTotal = row.Total, row.Amount
		}
	}
	return summary, nil
}
