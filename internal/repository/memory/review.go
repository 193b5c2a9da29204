package memory

import (
	"context"
	"time"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type ReviewRepository struct{ s *Store }

func cloneReview(r models.Review) models.Review {
	r.Tags = append([]string(nil), r.Tags...)
	return r
}

func (r *ReviewRepository) Create(_ context.Context, review *models.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	partner, ok := r.s.partners[review.PartnerID]
	if !ok {
		return errs.Markf(models.ErrNotFound, "partner %s not found", review.PartnerID)
	}
	for _, existing := range r.s.reviews {
		if existing.BookingID == review.BookingID {
			return errs.Markf(models.ErrConflict, "booking %s already reviewed", review.BookingID)
		}
	}

	review.ID = newID(review.ID)
	stamp(&review.CreatedAt, &review.UpdatedAt, r.s.now())
	r.s.reviews[review.ID] = cloneReview(*review)

	partner.Rating = (partner.Rating*float64(partner.ReviewCount) + review.Rating) / float64(partner.ReviewCount+1)
	partner.ReviewCount++
	r.s.partners[partner.ID] = partner
	return nil
}

func (r *ReviewRepository) Get(_ context.Context, id string) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	review, ok := r.s.reviews[id]
	if !ok {
		return nil, errs.Markf(models.ErrNotFound, "review %s not found", id)
	}
	review = cloneReview(review)
	return &review, nil
}

func (r *ReviewRepository) GetByBooking(_ context.Context, bookingID string) (*models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, review := range r.s.reviews {
		if review.BookingID == bookingID {
			review = cloneReview(review)
			return &review, nil
		}
	}
	return nil, errs.Markf(models.ErrNotFound, "no review for booking %s", bookingID)
}

func (r *ReviewRepository) Update(_ context.Context, review *models.Review, previousRating float64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.reviews[review.ID]; !ok {
		return errs.Markf(models.ErrNotFound, "review %s not found", review.ID)
	}
	stamp(nil, &review.UpdatedAt, r.s.now())
	r.s.reviews[review.ID] = cloneReview(*review)

	if partner, ok := r.s.partners[review.PartnerID]; ok && partner.ReviewCount > 0 && previousRating != review.Rating {
		n := float64(partner.ReviewCount)
		partner.Rating = (partner.Rating*n - previousRating + review.Rating) / n
		r.s.partners[partner.ID] = partner
	}
	return nil
}

func (r *ReviewRepository) ListForPartner(_ context.Context, partnerID string, n int) ([]models.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var reviews []models.Review
	for _, review := range r.s.reviews {
		if review.PartnerID == partnerID {
			reviews = append(reviews, cloneReview(review))
		}
	}
	sortByCreatedDesc(reviews, func(rv models.Review) time.Time { return rv.CreatedAt })
	return limit(reviews, n), nil
}
