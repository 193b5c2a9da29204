// Package catalog serves the list of bookable services with a short-lived
// cache in front of the store.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"carenow-backend/internal/metrics"
	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/errs"
)

const activeKey = "services:active"

type Service struct {
	repo    repository.ServiceRepository
	cache   *cache.Cache
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewService(repo repository.ServiceRepository, ttl time.Duration, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		cache:   cache.New(ttl, 2*ttl),
		metrics: m,
		log:     log.With().Str("component", "catalog").Logger(),
	}
}

// List returns the active services, served from cache while fresh.
func (s *Service) List(ctx context.Context) ([]models.Service, error) {
	if cached, found := s.cache.Get(activeKey); found {
		s.metrics.CatalogCache.WithLabelValues("hit").Inc()
		return copyServices(cached.([]models.Service)), nil
	}
	s.metrics.CatalogCache.WithLabelValues("miss").Inc()
	return s.Refresh(ctx)
}

// Refresh re-queries the store and replaces the cached list.
func (s *Service) Refresh(ctx context.Context) ([]models.Service, error) {
	services, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "failed to load services"), models.ErrUnavailable)
	}
	s.cache.Set(activeKey, services, cache.DefaultExpiration)
	s.log.Debug().Int("count", len(services)).Msg("catalog refreshed")
	return copyServices(services), nil
}

// Get looks the service up in the cached list first and falls back to the
// store, which also returns inactive services.
func (s *Service) Get(ctx context.Context, id string) (*models.Service, error) {
	if cached, found := s.cache.Get(activeKey); found {
		for _, svc := range cached.([]models.Service) {
			if svc.ID == id {
				svc := svc
				return &svc, nil
			}
		}
	}
	return s.repo.Get(ctx, id)
}

// ListAll includes inactive services, for the admin screens. Not cached.
func (s *Service) ListAll(ctx context.Context) ([]models.Service, error) {
	return s.repo.List(ctx, false)
}

func (s *Service) Create(ctx context.Context, in models.CreateServiceInput) (*models.Service, error) {
	svc := &models.Service{
		ID:               strings.TrimSpace(in.ID),
		Name:             strings.TrimSpace(in.Name),
		Description:      in.Description,
		Category:         in.Category,
		BasePrice:        in.BasePrice,
		DurationEstimate: in.DurationEstimate,
		IsActive:         true,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, err
	}
	s.Invalidate()
	return svc, nil
}

func (s *Service) Update(ctx context.Context, id string, in models.UpdateServiceInput) (*models.Service, error) {
	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		svc.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		svc.Description = *in.Description
	}
	if in.BasePrice != nil {
		svc.BasePrice = *in.BasePrice
	}
	if in.DurationEstimate != nil {
		svc.DurationEstimate = *in.DurationEstimate
	}
	if in.IsActive != nil {
		svc.IsActive = *in.IsActive
	}

	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, err
	}
	s.Invalidate()
	s.log.Info().Str("service_id", id).Float64("base_price", svc.BasePrice).Msg("service updated")
	return svc, nil
}

func (s *Service) Invalidate() {
	s.cache.Delete(activeKey)
}

func copyServices(in []models.Service) []models.Service {
	out := make([]models.Service, len(in))
	copy(out, in)
	return out
}
