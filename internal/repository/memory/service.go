package memory

import (
	"context"
	"sort"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type ServiceRepository struct{ s *Store }

func (r *ServiceRepository) Create(_ context.Context, service *models.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	service.ID = newID(service.ID)
	if _, exists := r.s.services[service.ID]; exists {
		return errs.Markf(models.ErrConflict, "service %s already exists", service.ID)
	}
	stamp(&service.CreatedAt, &service.UpdatedAt, r.s.now())
	r.s.services[service.ID] = *service
	return nil
}

func (r *ServiceRepository) Get(_ context.Context, id string) (*models.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	service, ok := r.s.services[id]
	if !ok {
		return nil, errs.Markf(models.ErrNotFound, "service %s not found", id)
	}
	return &service, nil
}

func (r *ServiceRepository) Update(_ context.Context, service *models.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	old, ok := r.s.services[service.ID]
	if !ok {
		return errs.Markf(models.ErrNotFound, "service %s not found", service.ID)
	}
	service.CreatedAt = old.CreatedAt
	stamp(nil, &service.UpdatedAt, r.s.now())
	r.s.services[service.ID] = *service
	return nil
}

func (r *ServiceRepository) List(_ context.Context, activeOnly bool) ([]models.Service, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	services := make([]models.Service, 0, len(r.s.services))
	for _, service := range r.s.services {
		if activeOnly && !service.IsActive {
			continue
		}
		services = append(services, service)
	}
	sort.Slice(services, func(i, j int) bool {
		if services[i].Category != services[j].Category {
			return services[i].Category < services[j].Category
		}
		return services[i].Name < services[j].Name
	})
	return services, nil
}
