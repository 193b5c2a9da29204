package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	partner.ID = newID(partner.ID)
	return errs.Wrap(r.db.WithContext(ctx).Create(partner).Error, "failed to create partner")
}

func (r *PartnerRepository) Get(ctx context.Context, id string) (*models.Partner, error) {
	var partner models.Partner
	if err := r.db.WithContext(ctx).First(&partner, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get partner")
	}
	return &partner, nil
}

func (r *PartnerRepository) GetByUserID(ctx context.Context, userID string) (*models.Partner, error) {
	var partner models.Partner
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&partner).Error; err != nil {
		return nil, notFound(err, "failed to get partner profile")
	}
	return &partner, nil
}

// Update saves every column; rating and review count are owned by the review
// repository and left untouched.
func (r *PartnerRepository) Update(ctx context.Context, partner *models.Partner) error {
	err := r.db.WithContext(ctx).Omit("rating", "review_count", "created_at").Save(partner).Error
	return errs.Wrap(err, "failed to update partner")
}

func (r *PartnerRepository) ListAvailable(ctx context.Context, serviceID string) ([]models.Partner, error) {
	var partners []models.Partner
	err := r.db.WithContext(ctx).
		Where("is_verified = ? AND is_available = ?", true, true).
		Where("JSON_CONTAINS(service_tags, JSON_QUOTE(?))", serviceID).
		Order("rating DESC").
		Find(&partners).Error
	if err != nil {
		return nil, errs.Wrap(err, "failed to list available partners")
	}
	return partners, nil
}

func (r *PartnerRepository) ListUnverified(ctx context.Context) ([]models.Partner, error) {
	var partners []models.Partner
	err := r.db.WithContext(ctx).Where("is_verified = ?", false).Order("created_at ASC").Find(&partners).Error
	if err != nil {
		return nil, errs.Wrap(err, "failed to list unverified partners")
	}
	return partners, nil
}

func (r *PartnerRepository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Partner{}).
		Where("is_verified = ? AND is_available = ?", true, true).
		Count(&count).Error
	return count, errs.Wrap(err, "failed to count partners")
}
