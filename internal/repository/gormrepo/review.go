package gormrepo

import (
	"context"

	"gorm.io/gorm"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/errs"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.Review) error {
	review.ID = newID(review.ID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(review).Error; err != nil {
			return errs.Wrap(err, "failed to create review")
		}
		res := tx.Model(&models.Partner{}).Where("id = ?", review.PartnerID).Updates(map[string]interface{}{
			"rating":       gorm.Expr("(rating * review_count + ?) / (review_count + 1)", review.Rating),
			"review_count": gorm.Expr("review_count + 1"),
		})
		if res.Error != nil {
			return errs.Wrap(res.Error, "failed to update partner rating")
		}
		if res.RowsAffected == 0 {
			return errs.Markf(models.ErrNotFound, "partner %s not found", review.PartnerID)
		}
		return nil
	})
}

func (r *ReviewRepository) Get(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).First(&review, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "failed to get review")
	}
	return &review, nil
}

func (r *ReviewRepository) GetByBooking(ctx context.Context, bookingID string) (*models.Review, error) {
	var review models.Review
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&review).Error; err != nil {
		return nil, notFound(err, "failed to get review for booking")
	}
	return &review, nil
}

func (r *ReviewRepository) Update(ctx context.Context, review *models.Review, previousRating float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(review).Error; err != nil {
			return errs.Wrap(err, "failed to update review")
		}
		if review.Rating == previousRating {
			return nil
		}
		err := tx.Model(&models.Partner{}).
			Where("id = ? AND review_count > 0", review.PartnerID).
			Update("rating", gorm.Expr("(rating * review_count - ? + ?) / review_count", previousRating, review.Rating)).
			Error
		return errs.Wrap(err, "failed to update partner rating")
	})
}

func (r *ReviewRepository) ListForPartner(ctx context.Context, partnerID string, limit int) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at DESC").
		Limit(repository.Limit(limit)).
		Find(&reviews).Error
	if err != nil {
		return nil, errs.Wrap(err, "failed to list reviews")
	}
	return reviews, nil
}
