// Package partner covers the caregiver's own profile and admin verification.
package partner

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/errs"
)

type Notifier interface {
	Notify(ctx context.Context, userID, category, title, body string, data map[string]string) error
}

type Service struct {
	partners repository.PartnerRepository
	services repository.ServiceRepository
	notifier Notifier
	log      zerolog.Logger
}

func NewService(repos repository.Repositories, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{
		partners: repos.Partners,
		services: repos.Services,
		notifier: notifier,
		log:      log.With().Str("component", "partner").Logger(),
	}
}

func (s *Service) Get(ctx context.Context, id string) (*models.Partner, error) {
	return s.partners.Get(ctx, id)
}

// Profile returns the partner profile owned by the calling user.
func (s *Service) Profile(ctx context.Context, userID string) (*models.Partner, error) {
	return s.partners.GetByUserID(ctx, userID)
}

// UpdateProfile replaces the editable fields. Every service tag must name a
// service in the catalog.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in models.UpdatePartnerProfileInput) (*models.Partner, error) {
	p, err := s.partners.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, len(in.ServiceTags))
	seen := make(map[string]bool, len(in.ServiceTags))
	for _, tag := range in.ServiceTags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		if _, err := s.services.Get(ctx, tag); err != nil {
			if errs.Is(err, models.ErrNotFound) {
				return nil, errs.Markf(models.ErrValidation, "unknown service %q", tag)
			}
			return nil, err
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	p.Name = strings.TrimSpace(in.Name)
	p.Bio = strings.TrimSpace(in.Bio)
	p.HourlyPrice = in.HourlyPrice
	p.ServiceTags = tags
	if in.Lat != 0 || in.Lng != 0 {
		p.Lat, p.Lng = in.Lat, in.Lng
	}
	if err := s.partners.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SetStatus toggles availability and optionally moves the partner's base
// location.
func (s *Service) SetStatus(ctx context.Context, userID string, in models.PartnerStatusInput) (*models.Partner, error) {
	if (in.Lat == nil) != (in.Lng == nil) {
		return nil, errs.Markf(models.ErrValidation, "lat and lng must be sent together")
	}
	p, err := s.partners.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.IsAvailable = in.IsAvailable
	if in.Lat != nil {
		p.Lat, p.Lng = *in.Lat, *in.Lng
	}
	if err := s.partners.Update(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("partner_id", p.ID).Bool("available", p.IsAvailable).Msg("partner status changed")
	return p, nil
}

func (s *Service) ListPending(ctx context.Context) ([]models.Partner, error) {
	return s.partners.ListUnverified(ctx)
}

// Verify approves a partner so they show up in searches.
func (s *Service) Verify(ctx context.Context, id string) (*models.Partner, error) {
	p, err := s.partners.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.IsVerified {
		return p, nil
	}
	p.IsVerified = true
	if err := s.partners.Update(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("partner_id", p.ID).Msg("partner verified")

	if err := s.notifier.Notify(ctx, p.UserID, models.NotificationSystem, "Profile verified",
		"Your partner profile is verified. Clients can now book you.", map[string]string{"partner_id": p.ID}); err != nil {
		s.log.Warn().Err(err).Str("partner_id", p.ID).Msg("verification notification not delivered")
	}
	return p, nil
}
