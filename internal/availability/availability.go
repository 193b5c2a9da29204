// Package availability answers "which partners can take this job".
package availability

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

type Query struct {
	ServiceID string
	Date      time.Time
	TimeSlot  string
	// Optional. When set, partners farther than the search radius are
	// dropped and the rest are ordered nearest first.
	Location *models.GeoPoint
}

type Service struct {
	partners repository.PartnerRepository
	bookings repository.BookingRepository
	radiusKM float64
	log      zerolog.Logger
}

func NewService(partners repository.PartnerRepository, bookings repository.BookingRepository, radiusKM float64, log zerolog.Logger) *Service {
	return &Service{
		partners: partners,
		bookings: bookings,
		radiusKM: radiusKM,
		log:      log.With().Str("component", "availability").Logger(),
	}
}

// Find returns verified, available partners that offer the service and have
// no active booking overlapping the requested slot.
func (s *Service) Find(ctx context.Context, q Query) ([]models.Partner, error) {
	if strings.TrimSpace(q.ServiceID) == "" {
		return nil, errs.Markf(models.ErrValidation, "service is required")
	}
	if q.TimeSlot != "" {
		if _, err := utils.ParseTimeSlot(q.TimeSlot); err != nil {
			return nil, errs.Mark(err, models.ErrValidation)
		}
	}

	candidates, err := s.partners.ListAvailable(ctx, q.ServiceID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to query partners")
	}

	busy := map[string]bool{}
	if !q.Date.IsZero() && q.TimeSlot != "" {
		booked, err := s.bookings.ListActiveOn(ctx, q.Date, "")
		if err != nil {
			return nil, errs.Wrap(err, "failed to query partner schedules")
		}
		for _, b := range booked {
			if utils.SlotsOverlap(b.TimeSlot, q.TimeSlot) {
				busy[b.PartnerID] = true
			}
		}
	}

	result := make([]models.Partner, 0, len(candidates))
	for _, p := range candidates {
		if busy[p.ID] {
			continue
		}
		if q.Location != nil {
			d := utils.HaversineKM(q.Location.Lat, q.Location.Lng, p.Lat, p.Lng)
			if s.radiusKM > 0 && d > s.radiusKM {
				continue
			}
			p.DistanceKM = &d
		}
		result = append(result, p)
	}

	if q.Location != nil {
		sort.SliceStable(result, func(i, j int) bool {
			return *result[i].DistanceKM < *result[j].DistanceKM
		})
	}

	s.log.Debug().
		Str("service_id", q.ServiceID).
		Str("time_slot", q.TimeSlot).
		Int("candidates", len(candidates)).
		Int("available", len(result)).
		Msg("partner availability")
	return result, nil
}

// IsFree reports whether the partner has no active booking overlapping slot
// on date.
func (s *Service) IsFree(ctx context.Context, partnerID string, date time.Time, slot string) (bool, error) {
	booked, err := s.bookings.ListActiveOn(ctx, date, partnerID)
	if err != nil {
		return false, errs.Wrap(err, "failed to query partner schedule")
	}
	for _, b := range booked {
		if utils.SlotsOverlap(b.TimeSlot, slot) {
			return false, nil
		}
	}
	return true, nil
}
