package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/clock"
	"carenow-backend/pkg/errs"
)

type Notifier interface {
	Notify(ctx context.Context, userID, category, title, body string, data map[string]string) error
}

// Service lets clients rate completed bookings. The partner's average is kept
// up to date by the repository in the same write.
type Service struct {
	reviews  repository.ReviewRepository
	bookings repository.BookingRepository
	partners repository.PartnerRepository
	notifier Notifier
	clock    clock.Clock
	log      zerolog.Logger
}

func NewService(repos repository.Repositories, notifier Notifier, c clock.Clock, log zerolog.Logger) *Service {
	return &Service{
		reviews:  repos.Reviews,
		bookings: repos.Bookings,
		partners: repos.Partners,
		notifier: notifier,
		clock:    c,
		log:      log.With().Str("component", "review").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, userID string, in models.CreateReviewInput) (*models.Review, error) {
	if !models.ValidRating(in.Rating) {
		return nil, errs.Markf(models.ErrValidation, "rating must be between %.0f and %.0f in half steps", models.MinRating, models.MaxRating)
	}
	if len(in.Comment) > models.MaxCommentLength {
		return nil, errs.Markf(models.ErrValidation, "comment is longer than %d characters", models.MaxCommentLength)
	}

	b, err := s.bookings.Get(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, errs.Markf(models.ErrForbidden, "only the client of booking %s can review it", b.ID)
	}
	if b.Status != models.BookingStatusCompleted {
		return nil, errs.Markf(models.ErrInvalidTransition, "only completed bookings can be reviewed, this one is %s", b.Status)
	}
	if _, err := s.reviews.GetByBooking(ctx, b.ID); err == nil {
		return nil, errs.Markf(models.ErrConflict, "booking %s already has a review", b.ID)
	} else if !errs.Is(err, models.ErrNotFound) {
		return nil, err
	}

	r := &models.Review{
		BookingID: b.ID,
		UserID:    userID,
		PartnerID: b.PartnerID,
		ServiceID: b.ServiceID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		Tags:      cleanTags(in.Tags),
		Recommend: in.Recommend,
		CreatedAt: s.clock.Now(),
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log.Info().Str("review_id", r.ID).Str("booking_id", b.ID).Float64("rating", r.Rating).Msg("review created")

	if partner, err := s.partners.Get(ctx, b.PartnerID); err == nil {
		body := fmt.Sprintf("You received a %.1f star review", r.Rating)
		if err := s.notifier.Notify(ctx, partner.UserID, models.NotificationReview, "New review", body,
			map[string]string{"review_id": r.ID, "booking_id": b.ID}); err != nil {
			s.log.Warn().Err(err).Str("review_id", r.ID).Msg("review notification not delivered")
		}
	}
	return r, nil
}

// Update is open to the author for ReviewEditWindow after creation.
func (s *Service) Update(ctx context.Context, userID, id string, in models.UpdateReviewInput) (*models.Review, error) {
	r, err := s.reviews.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.UserID != userID {
		return nil, errs.Markf(models.ErrForbidden, "review %s belongs to another user", id)
	}
	if !r.CanBeEdited(s.clock.Now()) {
		return nil, errs.Markf(models.ErrForbidden, "reviews can only be edited within %s", models.ReviewEditWindow)
	}

	previous := r.Rating
	if in.Rating != nil {
		if !models.ValidRating(*in.Rating) {
			return nil, errs.Markf(models.ErrValidation, "rating must be between %.0f and %.0f in half steps", models.MinRating, models.MaxRating)
		}
		r.Rating = *in.Rating
	}
	if in.Comment != nil {
		r.Comment = strings.TrimSpace(*in.Comment)
	}
	if in.Tags != nil {
		r.Tags = cleanTags(in.Tags)
	}
	if in.Recommend != nil {
		r.Recommend = *in.Recommend
	}

	if err := s.reviews.Update(ctx, r, previous); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) ListForPartner(ctx context.Context, partnerID string, limit int) ([]models.Review, error) {
	if _, err := s.partners.Get(ctx, partnerID); err != nil {
		return nil, err
	}
	return s.reviews.ListForPartner(ctx, partnerID, limit)
}

func cleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
