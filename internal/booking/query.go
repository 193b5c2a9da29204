package booking

import (
	"context"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

// Get returns a booking to its client, its assigned partner or staff.
func (s *Service) Get(ctx context.Context, id string, actor models.Actor) (*models.Booking, error) {
	b, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.canView(ctx, b, actor); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) canView(ctx context.Context, b *models.Booking, actor models.Actor) error {
	switch {
	case actor.IsAdmin(), actor.RoleID == models.RoleFinance:
		return nil
	case b.UserID == actor.ID:
		return nil
	case actor.IsPartner():
		partner, err := s.partners.GetByUserID(ctx, actor.ID)
		if err == nil && partner.ID == b.PartnerID {
			return nil
		}
	}
	return errs.Markf(models.ErrForbidden, "booking %s is not visible to this user", b.ID)
}

// ListForUser is the client's booking history, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string, status models.BookingStatus, limit int) ([]models.Booking, error) {
	return s.bookings.List(ctx, models.BookingFilter{UserID: userID, Status: status, Limit: limit})
}

// ListForPartner resolves the partner profile of the calling user.
func (s *Service) ListForPartner(ctx context.Context, partnerUserID string, status models.BookingStatus, limit int) ([]models.Booking, error) {
	partner, err := s.partners.GetByUserID(ctx, partnerUserID)
	if err != nil {
		return nil, err
	}
	return s.bookings.List(ctx, models.BookingFilter{PartnerID: partner.ID, Status: status, Limit: limit})
}

func (s *Service) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, errs.Markf(models.ErrValidation, "unknown status %q", filter.Status)
	}
	return s.bookings.List(ctx, filter)
}

// Stats feeds the admin dashboard.
func (s *Service) Stats(ctx context.Context) (models.BookingStats, error) {
	byStatus, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return models.BookingStats{}, err
	}
	revenue, err := s.bookings.GrossRevenue(ctx)
	if err != nil {
		return models.BookingStats{}, err
	}
	active, err := s.partners.CountActive(ctx)
	if err != nil {
		return models.BookingStats{}, err
	}
	for _, st := range []models.BookingStatus{
		models.BookingStatusPending, models.BookingStatusConfirmed, models.BookingStatusInProgress,
		models.BookingStatusCompleted, models.BookingStatusCancelled,
	} {
		if _, ok := byStatus[st]; !ok {
			byStatus[st] = 0
		}
	}
	return models.BookingStats{ByStatus: byStatus, GrossRevenue: revenue, ActivePartners: active}, nil
}

func (s *Service) PaymentSummary(ctx context.Context) (models.PaymentSummary, error) {
	return s.bookings.PaymentSummary(ctx)
}
