// Package booking owns the booking lifecycle: creation, the partner's status
// steps, cancellation and payment settlement.
package booking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"carenow-backend/internal/metrics"
	"carenow-backend/internal/models"
	"carenow-backend/internal/payment"
	"carenow-backend/internal/realtime"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/clock"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

type ScheduleChecker interface {
	IsFree(ctx context.Context, partnerID string, date time.Time, slot string) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID, category, title, body string, data map[string]string) error
}

type Service struct {
	bookings repository.BookingRepository
	services repository.ServiceRepository
	partners repository.PartnerRepository
	users    repository.UserRepository
	schedule ScheduleChecker
	tracker  realtime.Tracker
	notifier Notifier
	payments payment.Gateway
	clock    clock.Clock
	metrics  *metrics.Metrics
	log      zerolog.Logger
}

type Deps struct {
	Repos    repository.Repositories
	Schedule ScheduleChecker
	Tracker  realtime.Tracker
	Notifier Notifier
	Payments payment.Gateway
	Clock    clock.Clock
	Metrics  *metrics.Metrics
	Log      zerolog.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		bookings: d.Repos.Bookings,
		services: d.Repos.Services,
		partners: d.Repos.Partners,
		users:    d.Repos.Users,
		schedule: d.Schedule,
		tracker:  d.Tracker,
		notifier: d.Notifier,
		payments: d.Payments,
		clock:    d.Clock,
		metrics:  d.Metrics,
		log:      d.Log.With().Str("component", "booking").Logger(),
	}
}

// Submit turns a complete request into a pending, unpaid booking. Service,
// partner and price are re-read from the store; the request's own price is
// ignored.
func (s *Service) Submit(ctx context.Context, userID string, req models.BookingRequest) (*models.Booking, error) {
	// 1. Request must be complete
	if err := req.Validate(); err != nil {
		s.metrics.BookingSubmitFailed.WithLabelValues("incomplete").Inc()
		return nil, err
	}
	date := utils.TruncateDay(*req.ScheduledDate)
	if date.Before(utils.TruncateDay(s.clock.Now())) {
		s.metrics.BookingSubmitFailed.WithLabelValues("past_date").Inc()
		return nil, errs.Markf(models.ErrValidation, "scheduled date %s is in the past", date.Format(utils.DateLayout))
	}

	// 2. Service must still be bookable
	service, err := s.services.Get(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !service.IsActive {
		s.metrics.BookingSubmitFailed.WithLabelValues("service_inactive").Inc()
		return nil, errs.Markf(models.ErrValidation, "service %s is no longer offered", service.ID)
	}

	// 3. Partner must be verified and offer it
	partner, err := s.partners.Get(ctx, req.PreferredPartnerID)
	if err != nil {
		return nil, err
	}
	if !partner.IsVerified || !partner.Offers(service.ID) {
		s.metrics.BookingSubmitFailed.WithLabelValues("partner_ineligible").Inc()
		return nil, errs.Markf(models.ErrValidation, "partner %s does not offer %s", partner.ID, service.Name)
	}

	// 4. Slot must be free
	free, err := s.schedule.IsFree(ctx, partner.ID, date, req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if !free {
		s.metrics.BookingSubmitFailed.WithLabelValues("slot_taken").Inc()
		return nil, errs.Markf(models.ErrConflict, "%s is already booked on %s at %s", partner.Name, date.Format(utils.DateLayout), req.TimeSlot)
	}

	// 5. Persist
	var lat, lng float64
	if req.Location != nil {
		lat, lng = req.Location.Lat, req.Location.Lng
	}
	b := &models.Booking{
		UserID:        userID,
		PartnerID:     partner.ID,
		ServiceID:     service.ID,
		ScheduledDate: date,
		TimeSlot:      req.TimeSlot,
		Hours:         req.Hours,
		TotalPrice:    models.TotalPriceFor(service, req.Hours),
		Address:       strings.TrimSpace(req.Address),
		Lat:           lat,
		Lng:           lng,
		Instructions:  req.Instructions,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
	// the store re-checks the slot atomically; IsFree above only fails fast
	if err := s.bookings.CreateIfFree(ctx, b); err != nil {
		if errs.Is(err, models.ErrConflict) {
			s.metrics.BookingSubmitFailed.WithLabelValues("slot_taken").Inc()
		}
		return nil, err
	}
	s.metrics.BookingsCreated.Inc()

	// 6. Payment page, when payments are on
	s.attachCharge(ctx, b, service)

	// 7. Side effects
	s.track(ctx, b, "Booking received, waiting for the partner to confirm")
	s.notify(ctx, partner.UserID, models.NotificationBooking, "New booking request",
		fmt.Sprintf("%s on %s, %s", service.Name, date.Format(utils.DateLayout), b.TimeSlot), b)

	s.log.Info().
		Str("booking_id", b.ID).
		Str("user_id", userID).
		Str("partner_id", partner.ID).
		Float64("total_price", b.TotalPrice).
		Msg("booking created")
	return b, nil
}

func (s *Service) attachCharge(ctx context.Context, b *models.Booking, service *models.Service) {
	// a missing customer only means a charge without customer details
	customer, _ := s.users.Get(ctx, b.UserID)
	charge, err := s.payments.CreateCharge(ctx, b, service, customer)
	if err != nil {
		s.log.Warn().Err(err).Str("booking_id", b.ID).Msg("payment charge not created")
		return
	}
	if charge == nil {
		return
	}
	b.PaymentToken = charge.Token
	b.PaymentRedirectURL = charge.RedirectURL
	if err := s.bookings.UpdatePayment(ctx, b); err != nil {
		s.log.Warn().Err(err).Str("booking_id", b.ID).Msg("payment token not saved")
	}
}

// Confirm is the assigned partner accepting a pending booking.
func (s *Service) Confirm(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error) {
	return s.partnerStep(ctx, bookingID, actor, models.BookingStatusConfirmed, "Your booking was confirmed")
}

// Start marks the visit as begun.
func (s *Service) Start(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error) {
	return s.partnerStep(ctx, bookingID, actor, models.BookingStatusInProgress, "Your caregiver has started")
}

func (s *Service) Complete(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error) {
	return s.partnerStep(ctx, bookingID, actor, models.BookingStatusCompleted, "Your booking is complete. How did it go?")
}

func (s *Service) partnerStep(ctx context.Context, bookingID string, actor models.Actor, next models.BookingStatus, message string) (*models.Booking, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAssignedPartner(ctx, b, actor); err != nil {
		return nil, err
	}

	from := b.Status
	if err := s.transition(ctx, b, next); err != nil {
		return nil, err
	}
	s.log.Info().Str("booking_id", b.ID).Str("from", string(from)).Str("to", string(next)).Msg("booking status changed")

	s.track(ctx, b, message)
	s.notify(ctx, b.UserID, models.NotificationBooking, statusTitle(next), message, b)
	return b, nil
}

// Cancel applies the cancellation rules for the actor:
//   - a client may cancel their own pending or confirmed booking while more
//     than models.CancellationLeadTime remains before the start;
//   - a partner may only reject a pending booking assigned to them;
//   - admins and the system may cancel any pending or confirmed booking.
func (s *Service) Cancel(ctx context.Context, bookingID string, actor models.Actor, reason string) (*models.Booking, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsAdmin():
	case actor.IsPartner():
		if err := s.requireAssignedPartner(ctx, b, actor); err != nil {
			return nil, err
		}
		if b.Status != models.BookingStatusPending {
			return nil, errs.Markf(models.ErrInvalidTransition, "only pending bookings can be rejected, this one is %s", b.Status)
		}
	default:
		if b.UserID != actor.ID {
			return nil, errs.Markf(models.ErrForbidden, "booking %s belongs to another user", b.ID)
		}
		if !b.Status.CanTransitionTo(models.BookingStatusCancelled) {
			return nil, errs.Markf(models.ErrInvalidTransition, "a %s booking cannot be cancelled", b.Status)
		}
		if !b.CanBeCancelled(s.clock.Now()) {
			return nil, errs.Markf(models.ErrCancellationWindow,
				"bookings can only be cancelled more than %s before the start", models.CancellationLeadTime)
		}
	}

	now := s.clock.Now()
	reason = strings.TrimSpace(reason)
	by := actor.ID
	b.CancelledAt = &now
	b.CancelledBy = &by
	if reason != "" {
		b.CancellationReason = &reason
	}
	if err := s.transition(ctx, b, models.BookingStatusCancelled); err != nil {
		return nil, err
	}
	s.log.Info().Str("booking_id", b.ID).Str("cancelled_by", by).Str("reason", reason).Msg("booking cancelled")

	message := "Booking cancelled"
	if reason != "" {
		message = "Booking cancelled: " + reason
	}
	s.track(ctx, b, message)

	// tell the other side
	if actor.ID != b.UserID {
		s.notify(ctx, b.UserID, models.NotificationBooking, "Booking cancelled", message, b)
	}
	if partner, err := s.partners.Get(ctx, b.PartnerID); err == nil && partner.UserID != actor.ID {
		s.notify(ctx, partner.UserID, models.NotificationBooking, "Booking cancelled", message, b)
	}
	return b, nil
}

// ApplyPaymentNotification settles a verified Midtrans notification. Failed
// payments cancel the booking if nobody confirmed it yet.
func (s *Service) ApplyPaymentNotification(ctx context.Context, n payment.Notification) (*models.Booking, error) {
	if err := s.payments.Verify(n); err != nil {
		s.metrics.PaymentsSettled.WithLabelValues("rejected").Inc()
		return nil, err
	}

	b, err := s.bookings.Get(ctx, n.OrderID)
	if err != nil {
		return nil, err
	}

	outcome := n.Outcome()
	s.log.Info().
		Str("booking_id", b.ID).
		Str("transaction_status", n.TransactionStatus).
		Str("fraud_status", n.FraudStatus).
		Str("outcome", string(outcome)).
		Msg("payment notification received")

	switch outcome {
	case payment.OutcomePaid:
		if b.PaymentStatus == models.PaymentStatusPaid {
			s.metrics.PaymentsSettled.WithLabelValues("duplicate").Inc()
			return b, nil
		}
		now := s.clock.Now()
		b.PaymentStatus = models.PaymentStatusPaid
		b.PaidAt = &now
		if err := s.bookings.UpdatePayment(ctx, b); err != nil {
			return nil, err
		}
		s.metrics.PaymentsSettled.WithLabelValues("paid").Inc()
		s.notify(ctx, b.UserID, models.NotificationBooking, "Payment received",
			"Thank you, your payment has been received.", b)
		return b, nil

	case payment.OutcomeFailed:
		s.metrics.PaymentsSettled.WithLabelValues("failed").Inc()
		if b.Status != models.BookingStatusPending {
			return b, nil
		}
		return s.Cancel(ctx, b.ID, models.SystemActor(), "payment "+strings.ToLower(n.TransactionStatus))

	default:
		s.metrics.PaymentsSettled.WithLabelValues("pending").Inc()
		return b, nil
	}
}

// transition moves b to next if the table allows it and nobody changed the
// row in between.
func (s *Service) transition(ctx context.Context, b *models.Booking, next models.BookingStatus) error {
	from := b.Status
	if !from.CanTransitionTo(next) {
		return errs.Markf(models.ErrInvalidTransition, "cannot move booking from %s to %s", from, next)
	}

	now := s.clock.Now()
	switch next {
	case models.BookingStatusConfirmed:
		b.ConfirmedAt = &now
	case models.BookingStatusInProgress:
		b.StartedAt = &now
	case models.BookingStatusCompleted:
		b.CompletedAt = &now
	}
	b.Status = next

	if err := s.bookings.UpdateStatus(ctx, b, from); err != nil {
		b.Status = from
		return err
	}
	s.metrics.BookingTransitions.WithLabelValues(string(next)).Inc()
	return nil
}

func (s *Service) requireAssignedPartner(ctx context.Context, b *models.Booking, actor models.Actor) error {
	if actor.IsAdmin() {
		return nil
	}
	partner, err := s.partners.GetByUserID(ctx, actor.ID)
	if err != nil {
		if errs.Is(err, models.ErrNotFound) {
			return errs.Markf(models.ErrForbidden, "only the assigned partner can do this")
		}
		return err
	}
	if partner.ID != b.PartnerID {
		return errs.Markf(models.ErrForbidden, "booking %s is assigned to another partner", b.ID)
	}
	return nil
}

func (s *Service) track(ctx context.Context, b *models.Booking, message string) {
	if err := s.tracker.PublishStatus(ctx, b.ID, b.Status, message); err != nil {
		s.log.Warn().Err(err).Str("booking_id", b.ID).Msg("tracking document not updated")
	}
}

func (s *Service) notify(ctx context.Context, userID, category, title, body string, b *models.Booking) {
	data := map[string]string{"booking_id": b.ID, "status": string(b.Status)}
	if err := s.notifier.Notify(ctx, userID, category, title, body, data); err != nil {
		s.log.Warn().Err(err).Str("booking_id", b.ID).Str("user_id", userID).Msg("notification not delivered")
	}
}

func statusTitle(status models.BookingStatus) string {
	switch status {
	case models.BookingStatusConfirmed:
		return "Booking confirmed"
	case models.BookingStatusInProgress:
		return "Service started"
	case models.BookingStatusCompleted:
		return "Service completed"
	default:
		return "Booking updated"
	}
}

// UpdateTracking lets the assigned partner share location, ETA and a short
// note while the visit is confirmed or running.
func (s *Service) UpdateTracking(ctx context.Context, bookingID string, actor models.Actor, in models.TrackingUpdateInput) error {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.requireAssignedPartner(ctx, b, actor); err != nil {
		return err
	}
	if b.Status != models.BookingStatusConfirmed && b.Status != models.BookingStatusInProgress {
		return errs.Markf(models.ErrInvalidTransition, "tracking is closed for %s bookings", b.Status)
	}

	if (in.Lat == nil) != (in.Lng == nil) {
		return errs.Markf(models.ErrValidation, "lat and lng must be sent together")
	}
	if in.Lat != nil {
		loc := models.PartnerLocation{Lat: *in.Lat, Lng: *in.Lng, Accuracy: in.Accuracy}
		if !(models.GeoPoint{Lat: loc.Lat, Lng: loc.Lng}).Valid() {
			return errs.Markf(models.ErrValidation, "coordinates out of range")
		}
		if err := s.tracker.UpdateLocation(ctx, b.ID, loc, in.ETAMinutes); err != nil {
			return errs.Wrap(err, "update partner location")
		}
	}
	if msg := strings.TrimSpace(in.Message); msg != "" {
		if err := s.tracker.AppendMessage(ctx, b.ID, msg); err != nil {
			return errs.Wrap(err, "append tracking message")
		}
	}
	s.metrics.TrackingUpdates.Inc()
	return nil
}
