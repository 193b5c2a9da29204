package bookingflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenow-backend/internal/availability"
	"carenow-backend/internal/models"
	"carenow-backend/pkg/clock"
	"carenow-backend/pkg/errs"
)

var (
	today    = time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	tomorrow = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
)

type fakeCatalog struct {
	services []models.Service
	err      error
}

func (f *fakeCatalog) List(context.Context) ([]models.Service, error) {
	return f.services, f.err
}

type fakeFinder struct {
	partners []models.Partner
	err      error
	queries  []availability.Query
}

func (f *fakeFinder) Find(_ context.Context, q availability.Query) ([]models.Partner, error) {
	f.queries = append(f.queries, q)
	return f.partners, f.err
}

type fakeGateway struct {
	mu        sync.Mutex
	submitted []models.BookingRequest
	cancelled []string
	submitErr error
	cancelErr error
}

func (f *fakeGateway) Submit(_ context.Context, userID string, req models.BookingRequest) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, req)
	return &models.Booking{
		ID:            "booking-1",
		UserID:        userID,
		PartnerID:     req.PreferredPartnerID,
		ServiceID:     req.ServiceID,
		ScheduledDate: *req.ScheduledDate,
		TimeSlot:      req.TimeSlot,
		Hours:         req.Hours,
		TotalPrice:    req.TotalPrice,
		Status:        models.BookingStatusPending,
	}, nil
}

func (f *fakeGateway) Cancel(_ context.Context, id string, _ models.Actor, reason string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return nil, f.cancelErr
	}
	f.cancelled = append(f.cancelled, id)
	return &models.Booking{ID: id, Status: models.BookingStatusCancelled, CancellationReason: &reason}, nil
}

type fixture struct {
	machine *Machine
	catalog *fakeCatalog
	finder  *fakeFinder
	gateway *fakeGateway
	seen    []Kind
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		catalog: &fakeCatalog{services: []models.Service{
			{ID: "elder_care_1", Name: "Elder Companion", Category: models.CategoryElderCare, BasePrice: 100000, IsActive: true},
			{ID: "pet_care_1", Name: "Pet Sitting", Category: models.CategoryPetCare, BasePrice: 50000, IsActive: true},
		}},
		finder: &fakeFinder{partners: []models.Partner{
			{ID: "p1", Name: "Siti", ServiceTags: []string{"elder_care_1"}, IsVerified: true, IsAvailable: true},
			{ID: "p2", Name: "Budi", ServiceTags: []string{"elder_care_1"}, IsVerified: true, IsAvailable: true},
		}},
		gateway: &fakeGateway{},
	}
	f.machine = NewMachine(
		models.Actor{ID: "client-1", RoleID: models.RoleClient},
		f.catalog, f.finder, f.gateway,
		WithClock(clock.NewMockClock(today)),
		WithObserver(func(s State) { f.seen = append(f.seen, s.Kind) }),
	)
	return f
}

func (f *fixture) dispatch(t *testing.T, ev Event, want Kind) State {
	t.Helper()
	s := f.machine.Dispatch(context.Background(), ev)
	require.Equal(t, want, s.Kind, "event %T: %s", ev, s.Message)
	return s
}

// completeSelection walks the wizard up to ready_for_confirmation.
func (f *fixture) completeSelection(t *testing.T) State {
	t.Helper()
	f.dispatch(t, LoadServices{}, KindServicesLoaded)
	f.dispatch(t, SelectService{ServiceID: "elder_care_1"}, KindServiceSelected)
	f.dispatch(t, SelectDate{Date: tomorrow}, KindDateTimeSelected)
	f.dispatch(t, SelectTimeSlot{Slot: "10:00–12:00", Hours: 2}, KindDateTimeSelected)
	f.dispatch(t, LoadPartners{}, KindPartnersLoaded)
	f.dispatch(t, SelectPartner{PartnerID: "p1"}, KindPartnerSelected)
	return f.dispatch(t, SetAddress{Address: "Jl. Sudirman 1, Jakarta", Lat: -6.2088, Lng: 106.8456}, KindReadyForConfirmation)
}

func TestHappyPathCreatesBooking(t *testing.T) {
	f := newFixture(t)

	ready := f.completeSelection(t)
	assert.Equal(t, 200000.0, ready.TotalPrice)
	require.NotNil(t, ready.Request)
	assert.Empty(t, ready.Request.Missing())

	created := f.dispatch(t, Submit{}, KindCreated)
	require.NotNil(t, created.Booking)
	assert.Equal(t, "booking-1", created.Booking.ID)
	assert.Equal(t, 200000.0, created.Booking.TotalPrice)

	require.Len(t, f.gateway.submitted, 1)
	req := f.gateway.submitted[0]
	assert.Equal(t, "elder_care_1", req.ServiceID)
	assert.Equal(t, "p1", req.PreferredPartnerID)
	assert.Equal(t, 2.0, req.Hours)

	require.Len(t, f.finder.queries, 1)
	assert.Equal(t, "elder_care_1", f.finder.queries[0].ServiceID)
	assert.Equal(t, tomorrow, f.finder.queries[0].Date)

	// the selection is gone once the booking exists
	again := f.dispatch(t, Submit{}, KindError)
	assert.True(t, errs.Is(again.Err, models.ErrValidation))
	assert.Len(t, f.gateway.submitted, 1)
}

func TestObserverSeesTransientStates(t *testing.T) {
	f := newFixture(t)
	f.completeSelection(t)
	f.dispatch(t, Submit{}, KindCreated)

	assert.Equal(t, []Kind{
		KindLoading, KindServicesLoaded,
		KindServiceSelected,
		KindDateTimeSelected,
		KindDateTimeSelected,
		KindPartnersLoading, KindPartnersLoaded,
		KindPartnerSelected,
		KindReadyForConfirmation,
		KindCreating, KindCreated,
	}, f.seen)
	assert.False(t, f.machine.State().Kind.Transient())
}

func TestReadyOnlyWhenComplete(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, LoadServices{}, KindServicesLoaded)
	f.dispatch(t, LoadPartners{}, KindError)

	s := f.dispatch(t, SelectService{ServiceID: "elder_care_1"}, KindServiceSelected)
	assert.Equal(t, []string{"date", "time_slot", "hours", "partner", "address"}, s.Missing)

	// address first, then the rest in an unusual order
	s = f.dispatch(t, SetAddress{Address: "Jl. Thamrin 5", Lat: -6.19, Lng: 106.82}, KindServiceSelected)
	assert.Equal(t, []string{"date", "time_slot", "hours", "partner"}, s.Missing)

	f.dispatch(t, SelectTimeSlot{Slot: "08:00-11:00", Hours: 3}, KindDateTimeSelected)
	f.dispatch(t, SelectDate{Date: tomorrow}, KindDateTimeSelected)
	f.dispatch(t, LoadPartners{}, KindPartnersLoaded)
	s = f.dispatch(t, SelectPartner{PartnerID: "p2"}, KindReadyForConfirmation)
	assert.Equal(t, 300000.0, s.TotalPrice)

	require.NotNil(t, f.finder.queries[0].Location)
	assert.Equal(t, -6.19, f.finder.queries[0].Location.Lat)
}

func TestSubmitIncompleteDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, LoadServices{}, KindServicesLoaded)
	f.dispatch(t, SelectService{ServiceID: "elder_care_1"}, KindServiceSelected)

	s := f.dispatch(t, Submit{}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrValidation))
	assert.Contains(t, s.Message, "date")
	assert.Empty(t, f.gateway.submitted)
	assert.NotContains(t, f.seen, KindCreating)
}

func TestPriceFollowsServiceAndHours(t *testing.T) {
	cases := []struct {
		name   string
		events []Event
		want   float64
	}{
		{
			name:   "service then hours",
			events: []Event{SelectService{ServiceID: "elder_care_1"}, SelectTimeSlot{Slot: "09:00-12:00", Hours: 3}},
			want:   300000,
		},
		{
			name:   "hours survive a service change",
			events: []Event{SelectService{ServiceID: "elder_care_1"}, SelectTimeSlot{Slot: "09:00-12:00", Hours: 3}, SelectService{ServiceID: "pet_care_1"}},
			want:   150000,
		},
		{
			name:   "hours changed last",
			events: []Event{SelectService{ServiceID: "pet_care_1"}, SelectTimeSlot{Slot: "09:00-12:00", Hours: 3}, SelectTimeSlot{Slot: "09:00-10:30", Hours: 1.5}},
			want:   75000,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.dispatch(t, LoadServices{}, KindServicesLoaded)
			var last State
			for _, ev := range tc.events {
				last = f.machine.Dispatch(context.Background(), ev)
				require.NotEqual(t, KindError, last.Kind, last.Message)
			}
			assert.Equal(t, tc.want, last.TotalPrice)
		})
	}
}

func TestUnknownIDsYieldNotFound(t *testing.T) {
	f := newFixture(t)

	// nothing loaded yet
	s := f.dispatch(t, SelectService{ServiceID: "elder_care_1"}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrNotFound))

	f.dispatch(t, LoadServices{}, KindServicesLoaded)
	f.dispatch(t, SelectService{ServiceID: "elder_care_1"}, KindServiceSelected)
	s = f.dispatch(t, SelectService{ServiceID: "ghost"}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrNotFound))

	f.dispatch(t, SelectDate{Date: tomorrow}, KindDateTimeSelected)
	f.dispatch(t, SelectTimeSlot{Slot: "10:00-12:00", Hours: 2}, KindDateTimeSelected)
	f.dispatch(t, LoadPartners{}, KindPartnersLoaded)
	s = f.dispatch(t, SelectPartner{PartnerID: "ghost"}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrNotFound))

	// selection is untouched by the failures
	s = f.dispatch(t, SelectPartner{PartnerID: "p1"}, KindPartnerSelected)
	assert.Equal(t, "elder_care_1", s.Request.ServiceID)
	assert.Equal(t, 200000.0, s.TotalPrice)
}

func TestChangingServiceClearsPartner(t *testing.T) {
	f := newFixture(t)
	f.completeSelection(t)

	// same service again keeps everything
	s := f.dispatch(t, SelectService{ServiceID: "elder_care_1"}, KindReadyForConfirmation)
	assert.Equal(t, "p1", s.Request.PreferredPartnerID)

	s = f.dispatch(t, SelectService{ServiceID: "pet_care_1"}, KindServiceSelected)
	assert.Empty(t, s.Request.PreferredPartnerID)
	assert.Equal(t, []string{"partner"}, s.Missing)

	s = f.dispatch(t, SelectPartner{PartnerID: "p1"}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrNotFound))
}

func TestStepGuards(t *testing.T) {
	f := newFixture(t)
	f.dispatch(t, LoadServices{}, KindServicesLoaded)

	s := f.dispatch(t, SelectDate{Date: tomorrow}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrValidation))
	f.dispatch(t, SelectTimeSlot{Slot: "10:00-12:00", Hours: 2}, KindError)

	f.dispatch(t, SelectService{ServiceID: "elder_care_1"}, KindServiceSelected)
	f.dispatch(t, SelectDate{Date: today.AddDate(0, 0, -1)}, KindError)
	f.dispatch(t, SelectDate{Date: today}, KindDateTimeSelected)
	f.dispatch(t, SelectTimeSlot{Slot: "12:00-10:00", Hours: 2}, KindError)
	f.dispatch(t, SelectTimeSlot{Slot: "10:00-12:00", Hours: 0}, KindError)
	s = f.dispatch(t, SelectTimeSlot{Slot: "10:00-12:00", Hours: models.MaxBookingHours + 1}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrValidation))
	f.dispatch(t, SetAddress{Address: "  ", Lat: 1, Lng: 1}, KindError)
	f.dispatch(t, SetAddress{Address: "Somewhere", Lat: 91, Lng: 1}, KindError)
}

func TestCollaboratorFailuresBecomeErrorState(t *testing.T) {
	f := newFixture(t)
	f.catalog.err = errors.New("store offline")
	s := f.dispatch(t, LoadServices{}, KindError)
	assert.Contains(t, s.Message, "store offline")

	f.catalog.err = nil
	f.completeSelection(t)

	f.gateway.submitErr = errs.Markf(models.ErrConflict, "partner already booked")
	s = f.dispatch(t, Submit{}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrConflict))

	// the user can fix things and retry without starting over
	f.gateway.submitErr = nil
	f.dispatch(t, Submit{}, KindCreated)
}

func TestCancelUsesLastBooking(t *testing.T) {
	f := newFixture(t)
	s := f.dispatch(t, Cancel{}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrValidation))

	f.completeSelection(t)
	f.dispatch(t, Submit{}, KindCreated)

	s = f.dispatch(t, Cancel{Reason: "plans changed"}, KindCancelled)
	assert.Equal(t, "booking-1", s.Booking.ID)
	assert.Equal(t, []string{"booking-1"}, f.gateway.cancelled)

	f.dispatch(t, Cancel{BookingID: "other"}, KindCancelled)
	assert.Equal(t, []string{"booking-1", "other"}, f.gateway.cancelled)

	f.gateway.cancelErr = errs.Markf(models.ErrCancellationWindow, "too late")
	s = f.dispatch(t, Cancel{}, KindError)
	assert.True(t, errs.Is(s.Err, models.ErrCancellationWindow))
}

func TestReset(t *testing.T) {
	f := newFixture(t)
	f.completeSelection(t)

	f.dispatch(t, Reset{}, KindInitial)
	s := f.dispatch(t, Submit{}, KindError)
	assert.Contains(t, s.Message, "service")
	f.dispatch(t, SelectService{ServiceID: "elder_care_1"}, KindError)
	f.dispatch(t, Cancel{}, KindError)
}

func TestConcurrentDispatchIsSerialised(t *testing.T) {
	f := newFixture(t)
	f.machine.observer = nil
	f.dispatch(t, LoadServices{}, KindServicesLoaded)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "elder_care_1"
			if i%2 == 0 {
				id = "pet_care_1"
			}
			f.machine.Dispatch(context.Background(), SelectService{ServiceID: id})
			f.machine.Dispatch(context.Background(), SelectTimeSlot{Slot: "10:00-12:00", Hours: 2})
		}(i)
	}
	wg.Wait()

	s := f.machine.Dispatch(context.Background(), SetInstructions{Text: "ring twice"})
	require.NotNil(t, s.Service)
	assert.Equal(t, s.Service.BasePrice*2, s.TotalPrice)
}

func TestEventPayload(t *testing.T) {
	lat, lng := -6.2, 106.8
	ev, err := EventPayload{Type: "set_address", Address: "x", Lat: &lat, Lng: &lng}.ToEvent()
	require.NoError(t, err)
	assert.Equal(t, SetAddress{Address: "x", Lat: lat, Lng: lng}, ev)

	ev, err = EventPayload{Type: "SELECT_DATE", Date: "2026-10-16"}.ToEvent()
	require.NoError(t, err)
	assert.Equal(t, SelectDate{Date: tomorrow}, ev)

	_, err = EventPayload{Type: "select_date", Date: "16/10/2026"}.ToEvent()
	assert.True(t, errs.Is(err, models.ErrValidation))
	_, err = EventPayload{Type: "set_address", Address: "x"}.ToEvent()
	assert.True(t, errs.Is(err, models.ErrValidation))
	_, err = EventPayload{Type: "fly"}.ToEvent()
	assert.True(t, errs.Is(err, models.ErrValidation))
}
