package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/internal/repository/memory"
	"carenow-backend/pkg/clock"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/logger"
)

type nopNotifier struct{ calls int }

func (n *nopNotifier) Notify(context.Context, string, string, string, string, map[string]string) error {
	n.calls++
	return nil
}

type fixture struct {
	svc      *Service
	repos    repository.Repositories
	clock    *clock.MockClock
	notifier *nopNotifier
	partner  *models.Partner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repos := memory.NewStore().Repositories()
	partner := &models.Partner{UserID: "partner-user", Name: "Siti", IsVerified: true}
	require.NoError(t, repos.Partners.Create(context.Background(), partner))

	clk := clock.NewMockClock(time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC))
	n := &nopNotifier{}
	return &fixture{
		svc:      NewService(repos, n, clk, logger.Nop()),
		repos:    repos,
		clock:    clk,
		notifier: n,
		partner:  partner,
	}
}

func (f *fixture) booking(t *testing.T, userID string, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		UserID: userID, PartnerID: f.partner.ID, ServiceID: "elder_care_1",
		ScheduledDate: time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), TimeSlot: "10:00-12:00",
		Hours: 2, TotalPrice: 200000, Status: status, PaymentStatus: models.PaymentStatusPaid,
	}
	require.NoError(t, f.repos.Bookings.Create(context.Background(), b))
	return b
}

func TestCreateReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.booking(t, "client", models.BookingStatusCompleted)

	r, err := f.svc.Create(ctx, "client", models.CreateReviewInput{
		BookingID: b.ID, Rating: 4.5, Comment: " Very kind ", Tags: []string{"Punctual", "punctual ", ""}, Recommend: true,
	})
	require.NoError(t, err)
	assert.Equal(t, f.partner.ID, r.PartnerID)
	assert.Equal(t, "Very kind", r.Comment)
	assert.Equal(t, []string{"punctual"}, r.Tags)
	assert.Equal(t, 1, f.notifier.calls)

	p, err := f.repos.Partners.Get(ctx, f.partner.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.5, p.Rating)
	assert.Equal(t, 1, p.ReviewCount)

	_, err = f.svc.Create(ctx, "client", models.CreateReviewInput{BookingID: b.ID, Rating: 3})
	assert.True(t, errs.Is(err, models.ErrConflict))
}

func TestCreateReviewGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	done := f.booking(t, "client", models.BookingStatusCompleted)
	open := f.booking(t, "client", models.BookingStatusConfirmed)

	cases := []struct {
		name   string
		userID string
		in     models.CreateReviewInput
		want   error
	}{
		{"quarter star", "client", models.CreateReviewInput{BookingID: done.ID, Rating: 4.25}, models.ErrValidation},
		{"above five", "client", models.CreateReviewInput{BookingID: done.ID, Rating: 5.5}, models.ErrValidation},
		{"not the client", "someone", models.CreateReviewInput{BookingID: done.ID, Rating: 4}, models.ErrForbidden},
		{"not completed", "client", models.CreateReviewInput{BookingID: open.ID, Rating: 4}, models.ErrInvalidTransition},
		{"unknown booking", "client", models.CreateReviewInput{BookingID: "nope", Rating: 4}, models.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, tc.userID, tc.in)
			assert.True(t, errs.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestUpdateReviewWithinWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.booking(t, "client", models.BookingStatusCompleted)
	second := f.booking(t, "other", models.BookingStatusCompleted)

	r, err := f.svc.Create(ctx, "client", models.CreateReviewInput{BookingID: first.ID, Rating: 2})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "other", models.CreateReviewInput{BookingID: second.ID, Rating: 4})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, "other", r.ID, models.UpdateReviewInput{})
	assert.True(t, errs.Is(err, models.ErrForbidden))

	f.clock.Add(models.ReviewEditWindow)
	rating := 5.0
	updated, err := f.svc.Update(ctx, "client", r.ID, models.UpdateReviewInput{Rating: &rating})
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Rating)

	p, err := f.repos.Partners.Get(ctx, f.partner.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, p.Rating, 1e-9)

	f.clock.Add(time.Second)
	_, err = f.svc.Update(ctx, "client", r.ID, models.UpdateReviewInput{Rating: &rating})
	assert.True(t, errs.Is(err, models.ErrForbidden))
}

func TestListForPartner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.booking(t, "client", models.BookingStatusCompleted)
	_, err := f.svc.Create(ctx, "client", models.CreateReviewInput{BookingID: b.ID, Rating: 5})
	require.NoError(t, err)

	reviews, err := f.svc.ListForPartner(ctx, f.partner.ID, 0)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	_, err = f.svc.ListForPartner(ctx, "nope", 0)
	assert.True(t, errs.Is(err, models.ErrNotFound))
}
