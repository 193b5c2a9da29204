package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, service *models.Service) error {
	service.ID = newID(service.ID)
	return errs.Wrap(r.db.WithContext(ctx).Create(service).Error, "failed to create service")
}

func (r *ServiceRepository) Get(ctx context.Context, id string) (*models.Service, error) {
	var service models.Service
	if err := r.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get service")
	}
	return &service, nil
}

func (r *ServiceRepository) Update(ctx context.Context, service *models.Service) error {
	res := r.db.WithContext(ctx).Model(&models.Service{}).Where("id = ?", service.ID).Updates(map[string]interface{}{
		"name":              service.Name,
		"description":       service.Description,
		"category":          service.Category,
		"base_price":        service.BasePrice,
		"duration_estimate": service.DurationEstimate,
		"is_active":         service.IsActive,
	})
	if res.Error != nil {
		return errs.Wrap(res.Error, "failed to update service")
	}
	if res.RowsAffected == 0 {
		return errs.Markf(models.ErrNotFound, "service %s not found", service.ID)
	}
	return nil
}

func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	var services []models.Service
	q := r.db.WithContext(ctx).Order("category ASC, name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&services).Error; err != nil {
		return nil, errs.Wrap(err, "failed to list services")
	}
	return services, nil
}
