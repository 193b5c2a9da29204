// Package flowsession keeps one booking-flow machine per client session so
// the wizard can be driven over stateless HTTP calls.
package flowsession

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"

	"carenow-backend/internal/bookingflow"
	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

// Factory builds a fresh machine for the actor.
type Factory func(actor models.Actor) *bookingflow.Machine

type Session struct {
	ID     string            `json:"id"`
	UserID string            `json:"user_id"`
	State  bookingflow.State `json:"state"`
}

type entry struct {
	userID  string
	machine *bookingflow.Machine
}

// Manager stores machines in a go-cache; idle sessions expire after ttl
// and every access extends them.
type Manager struct {
	cache   *cache.Cache
	ttl     time.Duration
	factory Factory
	log     zerolog.Logger
}

func NewManager(ttl time.Duration, factory Factory, log zerolog.Logger) *Manager {
	return &Manager{
		cache:   cache.New(ttl, ttl/2),
		ttl:     ttl,
		factory: factory,
		log:     log.With().Str("component", "flowsession").Logger(),
	}
}

// Create starts a session and loads the service catalog right away.
func (m *Manager) Create(ctx context.Context, actor models.Actor) *Session {
	id := uuid.NewString()
	machine := m.factory(actor)
	m.cache.Set(id, &entry{userID: actor.ID, machine: machine}, m.ttl)
	m.log.Debug().Str("session_id", id).Str("user_id", actor.ID).Msg("flow session created")

	state := machine.Dispatch(ctx, bookingflow.LoadServices{})
	return &Session{ID: id, UserID: actor.ID, State: state}
}

// Get returns the session if it exists and belongs to userID.
func (m *Manager) Get(id, userID string) (*Session, error) {
	e, err := m.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, UserID: userID, State: e.machine.State()}, nil
}

// Dispatch feeds one event to the session's machine.
func (m *Manager) Dispatch(ctx context.Context, id, userID string, ev bookingflow.Event) (*Session, error) {
	e, err := m.lookup(id, userID)
	if err != nil {
		return nil, err
	}
	state := e.machine.Dispatch(ctx, ev)
	return &Session{ID: id, UserID: userID, State: state}, nil
}

func (m *Manager) Delete(id, userID string) error {
	if _, err := m.lookup(id, userID); err != nil {
		return err
	}
	m.cache.Delete(id)
	return nil
}

func (m *Manager) Count() int {
	return m.cache.ItemCount()
}

func (m *Manager) lookup(id, userID string) (*entry, error) {
	v, found := m.cache.Get(id)
	if !found {
		return nil, errs.Markf(models.ErrNotFound, "booking flow %s not found or expired", id)
	}
	e := v.(*entry)
	if e.userID != userID {
		// do not reveal that the id exists
		return nil, errs.Markf(models.ErrNotFound, "booking flow %s not found or expired", id)
	}
	// sliding expiry
	m.cache.Set(id, e, m.ttl)
	return e, nil
}
