package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

func newBooking(partnerID string, day time.Time, slot string) *models.Booking {
	return &models.Booking{
		UserID:        "user-1",
		PartnerID:     partnerID,
		ServiceID:     "elder_care_1",
		ScheduledDate: day,
		TimeSlot:      slot,
		Hours:         2,
		TotalPrice:    200000,
		Status:        models.BookingStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
	}
}

func TestBookingUpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	b := newBooking("p1", time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC), "10:00-12:00")
	require.NoError(t, repos.Bookings.Create(ctx, b))

	first := *b
	first.Status = models.BookingStatusConfirmed
	require.NoError(t, repos.Bookings.UpdateStatus(ctx, &first, models.BookingStatusPending))

	second := *b
	second.Status = models.BookingStatusCancelled
	err := repos.Bookings.UpdateStatus(ctx, &second, models.BookingStatusPending)
	require.Error(t, err)
	assert.True(t, errs.Is(err, models.ErrConflict))

	stored, err := repos.Bookings.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, stored.Status)

	missing := *b
	missing.ID = "nope"
	err = repos.Bookings.UpdateStatus(ctx, &missing, models.BookingStatusPending)
	assert.True(t, errs.Is(err, models.ErrNotFound))
}

func TestBookingCreateIfFree(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Bookings.CreateIfFree(ctx, newBooking("p1", day, "10:00-12:00")))

	err := repos.Bookings.CreateIfFree(ctx, newBooking("p1", day.Add(9*time.Hour), "11:00-13:00"))
	assert.True(t, errs.Is(err, models.ErrConflict))

	// other partner, other day, back to back
	require.NoError(t, repos.Bookings.CreateIfFree(ctx, newBooking("p2", day, "10:00-12:00")))
	require.NoError(t, repos.Bookings.CreateIfFree(ctx, newBooking("p1", day.AddDate(0, 0, 1), "10:00-12:00")))
	require.NoError(t, repos.Bookings.CreateIfFree(ctx, newBooking("p1", day, "12:00-14:00")))

	// a cancelled booking frees its slot
	cancelled := newBooking("p3", day, "08:00-10:00")
	cancelled.Status = models.BookingStatusCancelled
	require.NoError(t, repos.Bookings.Create(ctx, cancelled))
	require.NoError(t, repos.Bookings.CreateIfFree(ctx, newBooking("p3", day, "08:00-10:00")))
}

func TestBookingCreateIfFreeConcurrent(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repos.Bookings.CreateIfFree(ctx, newBooking("p1", day, "10:00-12:00")); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	active, err := repos.Bookings.ListActiveOn(ctx, day, "p1")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestBookingListActiveOn(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	active := newBooking("p1", day.Add(9*time.Hour), "10:00-12:00")
	other := newBooking("p2", day, "10:00-12:00")
	cancelled := newBooking("p1", day, "14:00-16:00")
	cancelled.Status = models.BookingStatusCancelled
	nextDay := newBooking("p1", day.AddDate(0, 0, 1), "10:00-12:00")
	for _, b := range []*models.Booking{active, other, cancelled, nextDay} {
		require.NoError(t, repos.Bookings.Create(ctx, b))
	}

	got, err := repos.Bookings.ListActiveOn(ctx, day.Add(15*time.Hour), "p1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)

	all, err := repos.Bookings.ListActiveOn(ctx, day, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestReviewMaintainsPartnerAverage(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	partner := &models.Partner{UserID: "u-p", Name: "Siti"}
	require.NoError(t, repos.Partners.Create(ctx, partner))

	r1 := &models.Review{BookingID: "b1", UserID: "u1", PartnerID: partner.ID, Rating: 4}
	r2 := &models.Review{BookingID: "b2", UserID: "u1", PartnerID: partner.ID, Rating: 5}
	require.NoError(t, repos.Reviews.Create(ctx, r1))
	require.NoError(t, repos.Reviews.Create(ctx, r2))

	got, err := repos.Partners.Get(ctx, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ReviewCount)
	assert.InDelta(t, 4.5, got.Rating, 1e-9)

	r1.Rating = 3
	require.NoError(t, repos.Reviews.Update(ctx, r1, 4))
	got, err = repos.Partners.Get(ctx, partner.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, got.Rating, 1e-9)

	dup := &models.Review{BookingID: "b1", UserID: "u1", PartnerID: partner.ID, Rating: 1}
	assert.True(t, errs.Is(repos.Reviews.Create(ctx, dup), models.ErrConflict))
}

func TestNotificationPreferenceDefaults(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	pref, err := repos.Notifications.GetPreference(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, pref.BookingUpdates)
	assert.True(t, pref.Reviews)
	assert.False(t, pref.Promotions)

	pref.Promotions = true
	require.NoError(t, repos.Notifications.SavePreference(ctx, &pref))
	pref, err = repos.Notifications.GetPreference(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, pref.Promotions)
}

func TestUserSoftDelete(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	u := &models.User{FullName: "Ana", Email: " Ana@Example.com ", RoleID: models.RoleClient}
	require.NoError(t, repos.Users.Create(ctx, u))

	got, err := repos.Users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	require.NoError(t, repos.Users.Delete(ctx, u.ID))
	_, err = repos.Users.Get(ctx, u.ID)
	assert.True(t, errs.Is(err, models.ErrNotFound))

	// the address is free again once the old account is gone
	require.NoError(t, repos.Users.Create(ctx, &models.User{FullName: "Ana", Email: "ana@example.com"}))
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Seed(ctx))

	repos := store.Repositories()
	services, err := repos.Services.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, services, len(DemoServices))

	partners, err := repos.Partners.ListAvailable(ctx, "elder_care_1")
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "Siti Rahma", partners[0].Name)
}
