package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/internal/repository/memory"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/logger"
)

var day = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

func seedPartners(t *testing.T, repos repository.Repositories) map[string]*models.Partner {
	t.Helper()
	ctx := context.Background()
	partners := map[string]*models.Partner{
		"near": {UserID: "u1", Name: "Near", ServiceTags: []string{"elder_care_1"}, Lat: -6.2000, Lng: 106.8166, IsVerified: true, IsAvailable: true, Rating: 4},
		"far":  {UserID: "u2", Name: "Far", ServiceTags: []string{"elder_care_1"}, Lat: -6.9175, Lng: 107.6191, IsVerified: true, IsAvailable: true, Rating: 5},
		"mid":  {UserID: "u3", Name: "Mid", ServiceTags: []string{"elder_care_1"}, Lat: -6.2500, Lng: 106.8500, IsVerified: true, IsAvailable: true, Rating: 3},
		"off":  {UserID: "u4", Name: "Off", ServiceTags: []string{"elder_care_1"}, IsVerified: true, IsAvailable: false},
		"new":  {UserID: "u5", Name: "New", ServiceTags: []string{"elder_care_1"}, IsVerified: false, IsAvailable: true},
		"pets": {UserID: "u6", Name: "Pets", ServiceTags: []string{"pet_care_1"}, IsVerified: true, IsAvailable: true},
	}
	for _, p := range partners {
		require.NoError(t, repos.Partners.Create(ctx, p))
	}
	return partners
}

func names(partners []models.Partner) []string {
	out := make([]string, 0, len(partners))
	for _, p := range partners {
		out = append(out, p.Name)
	}
	return out
}

func TestFindFiltersByTagVerificationAndAvailability(t *testing.T) {
	repos := memory.NewStore().Repositories()
	seedPartners(t, repos)
	svc := NewService(repos.Partners, repos.Bookings, 15, logger.Nop())

	got, err := svc.Find(context.Background(), Query{ServiceID: "elder_care_1", Date: day, TimeSlot: "10:00-12:00"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Near", "Far", "Mid"}, names(got))
	for _, p := range got {
		assert.Nil(t, p.DistanceKM)
	}
}

func TestFindExcludesBusyPartners(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewStore().Repositories()
	partners := seedPartners(t, repos)
	svc := NewService(repos.Partners, repos.Bookings, 15, logger.Nop())

	require.NoError(t, repos.Bookings.Create(ctx, &models.Booking{
		UserID: "c1", PartnerID: partners["near"].ID, ServiceID: "elder_care_1",
		ScheduledDate: day, TimeSlot: "11:00 – 13:00", Hours: 2, Status: models.BookingStatusConfirmed,
	}))
	require.NoError(t, repos.Bookings.Create(ctx, &models.Booking{
		UserID: "c1", PartnerID: partners["mid"].ID, ServiceID: "elder_care_1",
		ScheduledDate: day, TimeSlot: "10:00-12:00", Hours: 2, Status: models.BookingStatusCancelled,
	}))

	got, err := svc.Find(ctx, Query{ServiceID: "elder_care_1", Date: day, TimeSlot: "10:00–12:00"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Far", "Mid"}, names(got))

	// adjacent slot is fine
	got, err = svc.Find(ctx, Query{ServiceID: "elder_care_1", Date: day, TimeSlot: "13:00-15:00"})
	require.NoError(t, err)
	assert.Len(t, got, 3)

	free, err := svc.IsFree(ctx, partners["near"].ID, day, "12:00-14:00")
	require.NoError(t, err)
	assert.False(t, free)
}

func TestFindWithLocationSortsAndLimitsByRadius(t *testing.T) {
	repos := memory.NewStore().Repositories()
	seedPartners(t, repos)
	svc := NewService(repos.Partners, repos.Bookings, 15, logger.Nop())

	got, err := svc.Find(context.Background(), Query{
		ServiceID: "elder_care_1",
		Location:  &models.GeoPoint{Lat: -6.2088, Lng: 106.8456},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Near", "Mid"}, names(got))
	require.NotNil(t, got[0].DistanceKM)
	assert.Less(t, *got[0].DistanceKM, *got[1].DistanceKM)
}

func TestFindValidation(t *testing.T) {
	repos := memory.NewStore().Repositories()
	svc := NewService(repos.Partners, repos.Bookings, 15, logger.Nop())

	_, err := svc.Find(context.Background(), Query{})
	assert.True(t, errs.Is(err, models.ErrValidation))

	_, err = svc.Find(context.Background(), Query{ServiceID: "x", TimeSlot: "late"})
	assert.True(t, errs.Is(err, models.ErrValidation))

	got, err := svc.Find(context.Background(), Query{ServiceID: "nobody_offers_this"})
	require.NoError(t, err)
	assert.Empty(t, got)
}
