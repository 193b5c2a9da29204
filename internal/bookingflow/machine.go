// Package bookingflow drives the multi-step booking wizard: pick a service,
// a date and slot, a partner and an address, then submit.
package bookingflow

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"carenow-backend/internal/availability"
	"carenow-backend/internal/models"
	"carenow-backend/pkg/clock"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

const maxInstructionsLength = 1000

type ServiceCatalog interface {
	List(ctx context.Context) ([]models.Service, error)
}

type PartnerFinder interface {
	Find(ctx context.Context, q availability.Query) ([]models.Partner, error)
}

type BookingGateway interface {
	Submit(ctx context.Context, userID string, req models.BookingRequest) (*models.Booking, error)
	Cancel(ctx context.Context, bookingID string, actor models.Actor, reason string) (*models.Booking, error)
}

// Observer sees every state in emission order, transient ones included. It
// runs under the machine lock and must not call back into the machine.
type Observer func(State)

type Option func(*Machine)

func WithObserver(fn Observer) Option {
	return func(m *Machine) { m.observer = fn }
}

func WithClock(c clock.Clock) Option {
	return func(m *Machine) { m.clock = c }
}

func WithLogger(log zerolog.Logger) Option {
	return func(m *Machine) { m.log = log }
}

// Machine holds one client's wizard. Events are applied one at a time in
// arrival order.
type Machine struct {
	mu sync.Mutex

	actor    models.Actor
	catalog  ServiceCatalog
	finder   PartnerFinder
	gateway  BookingGateway
	observer Observer
	clock    clock.Clock
	log      zerolog.Logger

	services []models.Service
	service  *models.Service
	partners []models.Partner
	partner  *models.Partner
	request  models.BookingRequest

	lastBooking *models.Booking
	state       State
}

func NewMachine(actor models.Actor, catalog ServiceCatalog, finder PartnerFinder, gateway BookingGateway, opts ...Option) *Machine {
	m := &Machine{
		actor:   actor,
		catalog: catalog,
		finder:  finder,
		gateway: gateway,
		clock:   clock.NewRealClock(),
		log:     zerolog.Nop(),
		state:   State{Kind: KindInitial},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the last state Dispatch produced.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Dispatch applies ev and returns the resulting state. Failures never panic
// or return an error; they come back as a KindError state and leave the
// selection as it was.
func (m *Machine) Dispatch(ctx context.Context, ev Event) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	var next State
	switch e := ev.(type) {
	case LoadServices:
		next = m.loadServices(ctx)
	case SelectService:
		next = m.selectService(e)
	case SelectDate:
		next = m.selectDate(e)
	case SelectTimeSlot:
		next = m.selectTimeSlot(e)
	case LoadPartners:
		next = m.loadPartners(ctx)
	case SelectPartner:
		next = m.selectPartner(e)
	case SetAddress:
		next = m.setAddress(e)
	case SetInstructions:
		next = m.setInstructions(e)
	case Submit:
		next = m.submit(ctx)
	case Cancel:
		next = m.cancel(ctx, e)
	case Reset:
		m.reset()
		next = State{Kind: KindInitial}
	default:
		next = errorState(errs.Markf(models.ErrValidation, "unsupported event %T", ev))
	}

	if next.Kind == KindError {
		m.log.Debug().Str("event", eventName(ev)).Str("error", next.Message).Msg("booking flow rejected event")
	}
	m.state = next
	m.emit(next)
	return next
}

func eventName(ev Event) string {
	if ev == nil {
		return "<nil>"
	}
	return ev.eventName()
}

func (m *Machine) emit(s State) {
	if m.observer != nil {
		m.observer(s)
	}
}

func (m *Machine) loadServices(ctx context.Context) State {
	m.emit(State{Kind: KindLoading})

	services, err := m.catalog.List(ctx)
	if err != nil {
		return errorState(errs.Wrap(err, "could not load services"))
	}
	m.services = services
	return State{Kind: KindServicesLoaded, Services: services}
}

func (m *Machine) selectService(e SelectService) State {
	var found *models.Service
	for i := range m.services {
		if m.services[i].ID == e.ServiceID {
			svc := m.services[i]
			found = &svc
			break
		}
	}
	if found == nil {
		return errorState(errs.Markf(models.ErrNotFound, "service %q is not in the catalog", e.ServiceID))
	}

	if m.service == nil || m.service.ID != found.ID {
		// partners were searched for the old service
		m.partners = nil
		m.partner = nil
		m.request.PreferredPartnerID = ""
	}
	m.service = found
	m.request.ServiceID = found.ID
	m.reprice()
	return m.step(KindServiceSelected)
}

func (m *Machine) selectDate(e SelectDate) State {
	if m.service == nil {
		return errorState(errs.Markf(models.ErrValidation, "select a service before picking a date"))
	}
	if e.Date.IsZero() {
		return errorState(errs.Markf(models.ErrValidation, "date is required"))
	}
	day := utils.TruncateDay(e.Date)
	if day.Before(utils.TruncateDay(m.clock.Now())) {
		return errorState(errs.Markf(models.ErrValidation, "date %s is in the past", day.Format(utils.DateLayout)))
	}
	m.request.ScheduledDate = &day
	return m.step(KindDateTimeSelected)
}

func (m *Machine) selectTimeSlot(e SelectTimeSlot) State {
	if m.service == nil {
		return errorState(errs.Markf(models.ErrValidation, "select a service before picking a time slot"))
	}
	if _, err := utils.ParseTimeSlot(e.Slot); err != nil {
		return errorState(errs.Mark(err, models.ErrValidation))
	}
	if e.Hours <= 0 {
		return errorState(errs.Markf(models.ErrValidation, "hours must be greater than zero"))
	}
	if e.Hours > models.MaxBookingHours {
		return errorState(errs.Markf(models.ErrValidation, "hours are limited to %d", models.MaxBookingHours))
	}
	m.request.TimeSlot = e.Slot
	m.request.Hours = e.Hours
	m.reprice()
	return m.step(KindDateTimeSelected)
}

func (m *Machine) loadPartners(ctx context.Context) State {
	if m.service == nil || m.request.ScheduledDate == nil || m.request.TimeSlot == "" {
		return errorState(errs.Markf(models.ErrValidation, "select a service, date and time slot before searching partners"))
	}
	m.emit(State{Kind: KindPartnersLoading})

	partners, err := m.finder.Find(ctx, availability.Query{
		ServiceID: m.service.ID,
		Date:      *m.request.ScheduledDate,
		TimeSlot:  m.request.TimeSlot,
		Location:  m.request.Location,
	})
	if err != nil {
		return errorState(errs.Wrap(err, "could not load partners"))
	}
	m.partners = partners

	if m.partner != nil && !containsPartner(partners, m.partner.ID) {
		m.partner = nil
		m.request.PreferredPartnerID = ""
	}
	return State{Kind: KindPartnersLoaded, Partners: partners, Request: m.snapshot()}
}

func (m *Machine) selectPartner(e SelectPartner) State {
	for i := range m.partners {
		if m.partners[i].ID == e.PartnerID {
			p := m.partners[i]
			m.partner = &p
			m.request.PreferredPartnerID = p.ID
			return m.step(KindPartnerSelected)
		}
	}
	return errorState(errs.Markf(models.ErrNotFound, "partner %q is not in the loaded list", e.PartnerID))
}

func (m *Machine) setAddress(e SetAddress) State {
	address := strings.TrimSpace(e.Address)
	if address == "" {
		return errorState(errs.Markf(models.ErrValidation, "address is required"))
	}
	loc := models.GeoPoint{Lat: e.Lat, Lng: e.Lng}
	if !loc.Valid() {
		return errorState(errs.Markf(models.ErrValidation, "coordinates out of range"))
	}
	m.request.Address = address
	m.request.Location = &loc
	return m.step(m.progress())
}

func (m *Machine) setInstructions(e SetInstructions) State {
	text := strings.TrimSpace(e.Text)
	if len(text) > maxInstructionsLength {
		return errorState(errs.Markf(models.ErrValidation, "instructions are limited to %d characters", maxInstructionsLength))
	}
	m.request.Instructions = text
	return m.step(m.progress())
}

func (m *Machine) submit(ctx context.Context) State {
	if err := m.request.Validate(); err != nil {
		return errorState(err)
	}
	m.emit(State{Kind: KindCreating, Request: m.snapshot(), TotalPrice: m.request.TotalPrice})

	booking, err := m.gateway.Submit(ctx, m.actor.ID, m.request)
	if err != nil {
		return errorState(errs.Wrap(err, "could not create booking"))
	}

	m.reset()
	m.lastBooking = booking
	m.log.Info().Str("booking_id", booking.ID).Str("user_id", m.actor.ID).Msg("booking created from flow")
	return State{Kind: KindCreated, Booking: booking}
}

func (m *Machine) cancel(ctx context.Context, e Cancel) State {
	id := e.BookingID
	if id == "" && m.lastBooking != nil {
		id = m.lastBooking.ID
	}
	if id == "" {
		return errorState(errs.Markf(models.ErrValidation, "there is no booking to cancel"))
	}

	booking, err := m.gateway.Cancel(ctx, id, m.actor, e.Reason)
	if err != nil {
		return errorState(errs.Wrap(err, "could not cancel booking"))
	}
	if m.lastBooking != nil && m.lastBooking.ID == booking.ID {
		m.lastBooking = booking
	}
	return State{Kind: KindCancelled, Booking: booking}
}

func (m *Machine) reset() {
	m.services = nil
	m.service = nil
	m.partners = nil
	m.partner = nil
	m.request = models.BookingRequest{}
	m.lastBooking = nil
}

func (m *Machine) reprice() {
	m.request.TotalPrice = models.TotalPriceFor(m.service, m.request.Hours)
}

// progress is the furthest wizard step reached so far.
func (m *Machine) progress() Kind {
	switch {
	case m.partner != nil:
		return KindPartnerSelected
	case m.request.ScheduledDate != nil || m.request.TimeSlot != "":
		return KindDateTimeSelected
	case m.service != nil:
		return KindServiceSelected
	default:
		return KindInitial
	}
}

// step builds the state for a setter: ready_for_confirmation once nothing is
// missing, otherwise the given step.
func (m *Machine) step(kind Kind) State {
	req := m.snapshot()
	if m.request.IsComplete() {
		return State{
			Kind:       KindReadyForConfirmation,
			Service:    m.service,
			Partner:    m.partner,
			Request:    req,
			TotalPrice: m.request.TotalPrice,
		}
	}

	s := State{
		Kind:       kind,
		Service:    m.service,
		Partner:    m.partner,
		Date:       req.ScheduledDate,
		TimeSlot:   req.TimeSlot,
		Request:    req,
		TotalPrice: m.request.TotalPrice,
		Missing:    m.request.Missing(),
	}
	if kind == KindPartnerSelected || kind == KindServiceSelected {
		s.Partners = m.partners
	}
	return s
}

// snapshot copies the request so callers never alias machine state.
func (m *Machine) snapshot() *models.BookingRequest {
	req := m.request
	if req.ScheduledDate != nil {
		d := *req.ScheduledDate
		req.ScheduledDate = &d
	}
	if req.Location != nil {
		loc := *req.Location
		req.Location = &loc
	}
	return &req
}

func containsPartner(partners []models.Partner, id string) bool {
	for _, p := range partners {
		if p.ID == id {
			return true
		}
	}
	return false
}
