package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenow-backend/pkg/errs"
)

func TestBookingTransitions(t *testing.T) {
	all := []BookingStatus{
		BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled,
	}
	allowed := map[[2]BookingStatus]bool{
		{BookingStatusPending, BookingStatusConfirmed}:    true,
		{BookingStatusPending, BookingStatusCancelled}:    true,
		{BookingStatusConfirmed, BookingStatusInProgress}: true,
		{BookingStatusConfirmed, BookingStatusCancelled}:  true,
		{BookingStatusInProgress, BookingStatusCompleted}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, allowed[[2]BookingStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
	assert.True(t, BookingStatusCompleted.IsTerminal())
	assert.True(t, BookingStatusCancelled.IsTerminal())
	assert.False(t, BookingStatus("done").Valid())
}

func TestCanBeCancelled(t *testing.T) {
	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	start := day.Add(10 * time.Hour)

	cases := []struct {
		name   string
		status BookingStatus
		now    time.Time
		want   bool
	}{
		{"a day ahead", BookingStatusPending, start.Add(-24 * time.Hour), true},
		{"just over two hours", BookingStatusConfirmed, start.Add(-2*time.Hour - time.Second), true},
		{"exactly two hours", BookingStatusPending, start.Add(-2 * time.Hour), false},
		{"inside the window", BookingStatusPending, start.Add(-time.Hour), false},
		{"already started", BookingStatusConfirmed, start.Add(time.Minute), false},
		{"in progress", BookingStatusInProgress, start.Add(-24 * time.Hour), false},
		{"completed", BookingStatusCompleted, start.Add(-24 * time.Hour), false},
		{"cancelled", BookingStatusCancelled, start.Add(-24 * time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &Booking{Status: tc.status, ScheduledDate: day, TimeSlot: "10:00-12:00"}
			assert.Equal(t, tc.want, b.CanBeCancelled(tc.now))
		})
	}

	broken := &Booking{Status: BookingStatusPending, ScheduledDate: day, TimeSlot: "pagi"}
	assert.False(t, broken.CanBeCancelled(day.Add(-48*time.Hour)))
}

func TestBookingRequestMissing(t *testing.T) {
	var r BookingRequest
	assert.Equal(t, []string{"service", "date", "time_slot", "hours", "partner", "address"}, r.Missing())
	assert.True(t, errs.Is(r.Validate(), ErrValidation))

	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	r = BookingRequest{
		ServiceID:          "elder_care_1",
		ScheduledDate:      &day,
		TimeSlot:           "10:00-12:00",
		Hours:              2,
		PreferredPartnerID: "p1",
		Address:            "Jl. Sudirman 1",
	}
	assert.Equal(t, []string{"address"}, r.Missing())

	r.Location = &GeoPoint{Lat: -6.2, Lng: 106.8}
	assert.True(t, r.IsComplete())
	require.NoError(t, r.Validate())

	r.Hours = MaxBookingHours + 1
	assert.True(t, errs.Is(r.Validate(), ErrValidation))
	r.Hours = 2

	r.Location = &GeoPoint{Lat: 120, Lng: 106.8}
	assert.True(t, errs.Is(r.Validate(), ErrValidation))

	r.Location = &GeoPoint{Lat: -6.2, Lng: 106.8}
	r.TimeSlot = "pagi"
	assert.True(t, errs.Is(r.Validate(), ErrValidation))

	_, err := CreateBookingInput{ScheduledDate: "16/10/2026"}.ToRequest()
	assert.True(t, errs.Is(err, ErrValidation))
}

func TestTotalPriceFor(t *testing.T) {
	svc := &Service{ID: "elder_care_1", BasePrice: 100000}
	assert.Equal(t, 200000.0, TotalPriceFor(svc, 2))
	assert.Equal(t, 150000.0, TotalPriceFor(svc, 1.5))
	assert.Zero(t, TotalPriceFor(nil, 2))
	assert.Zero(t, TotalPriceFor(svc, 0))
}

func TestRatingAndEditWindow(t *testing.T) {
	for _, ok := range []float64{0, 0.5, 3, 4.5, 5} {
		assert.True(t, ValidRating(ok), "%v", ok)
	}
	for _, bad := range []float64{-0.5, 4.3, 5.5} {
		assert.False(t, ValidRating(bad), "%v", bad)
	}

	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	r := &Review{CreatedAt: created}
	assert.True(t, r.CanBeEdited(created.Add(ReviewEditWindow)))
	assert.False(t, r.CanBeEdited(created.Add(ReviewEditWindow+time.Second)))
}
