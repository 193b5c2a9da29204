// Package memory implements the repositories in process. It backs
// DB_DRIVER=memory and the service tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
)

// Store holds every table behind one lock so cross-table writes (review plus
// partner rating) stay atomic.
type Store struct {
	mu            sync.RWMutex
	services      map[string]models.Service
	partners      map[string]models.Partner
	bookings      map[string]models.Booking
	users         map[string]models.User
	reviews       map[string]models.Review
	notifications map[string]models.Notification
	preferences   map[string]models.NotificationPreference

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		services:      make(map[string]models.Service),
		partners:      make(map[string]models.Partner),
		bookings:      make(map[string]models.Booking),
		users:         make(map[string]models.User),
		reviews:       make(map[string]models.Review),
		notifications: make(map[string]models.Notification),
		preferences:   make(map[string]models.NotificationPreference),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Services:      &ServiceRepository{s},
		Partners:      &PartnerRepository{s},
		Bookings:      &BookingRepository{s},
		Users:         &UserRepository{s},
		Reviews:       &ReviewRepository{s},
		Notifications: &NotificationRepository{s},
	}
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func stamp(created *time.Time, updated *time.Time, now time.Time) {
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func limit[T any](items []T, n int) []T {
	n = repository.Limit(n)
	if len(items) > n {
		return items[:n]
	}
	return items
}

func sortByCreatedDesc[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}
