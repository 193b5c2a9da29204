package memory

import (
	"context"
	"sort"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type PartnerRepository struct{ s *Store }

func clonePartner(p models.Partner) models.Partner {
	p.ServiceTags = append([]string(nil), p.ServiceTags...)
	p.DistanceKM = nil
	return p
}

func (r *PartnerRepository) Create(_ context.Context, partner *models.Partner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.partners {
		if p.UserID == partner.UserID {
			return errs.Markf(models.ErrConflict, "user %s already has a partner profile", partner.UserID)
		}
	}
	partner.ID = newID(partner.ID)
	stamp(&partner.CreatedAt, &partner.UpdatedAt, r.s.now())
	r.s.partners[partner.ID] = clonePartner(*partner)
	return nil
}

func (r *PartnerRepository) Get(_ context.Context, id string) (*models.Partner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.partners[id]
	if !ok {
		return nil, errs.Markf(models.ErrNotFound, "partner %s not found", id)
	}
	p = clonePartner(p)
	return &p, nil
}

func (r *PartnerRepository) GetByUserID(_ context.Context, userID string) (*models.Partner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.partners {
		if p.UserID == userID {
			p = clonePartner(p)
			return &p, nil
		}
	}
	return nil, errs.Markf(models.ErrNotFound, "no partner profile for user %s", userID)
}

func (r *PartnerRepository) Update(_ context.Context, partner *models.Partner) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	old, ok := r.s.partners[partner.ID]
	if !ok {
		return errs.Markf(models.ErrNotFound, "partner %s not found", partner.ID)
	}
	partner.Rating, partner.ReviewCount, partner.CreatedAt = old.Rating, old.ReviewCount, old.CreatedAt
	stamp(nil, &partner.UpdatedAt, r.s.now())
	r.s.partners[partner.ID] = clonePartner(*partner)
	return nil
}

func (r *PartnerRepository) ListAvailable(_ context.Context, serviceID string) ([]models.Partner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var partners []models.Partner
	for _, p := range r.s.partners {
		if p.IsVerified && p.IsAvailable && p.Offers(serviceID) {
			partners = append(partners, clonePartner(p))
		}
	}
	sort.SliceStable(partners, func(i, j int) bool {
		if partners[i].Rating != partners[j].Rating {
			return partners[i].Rating > partners[j].Rating
		}
		return partners[i].ID < partners[j].ID
	})
	return partners, nil
}

func (r *PartnerRepository) ListUnverified(_ context.Context) ([]models.Partner, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var partners []models.Partner
	for _, p := range r.s.partners {
		if !p.IsVerified {
			partners = append(partners, clonePartner(p))
		}
	}
	sort.SliceStable(partners, func(i, j int) bool {
		return partners[i].CreatedAt.Before(partners[j].CreatedAt)
	})
	return partners, nil
}

func (r *PartnerRepository) CountActive(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var n int64
	for _, p := range r.s.partners {
		if p.IsVerified && p.IsAvailable {
			n++
		}
	}
	return n, nil
}
