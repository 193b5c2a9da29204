package realtime

import (
	"context"
	"sync"
	"time"

	"google.golang.org/api/iterator"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/clock"
)

// Hub keeps tracking documents in process. It stands in for Firestore when
// Firebase is not configured and in tests.
//
// mu guards the maps only. Writes to one booking are ordered by that
// booking's lock in writers, so a slow watcher holds back its own booking
// and nothing else.
type Hub struct {
	mu       sync.Mutex
	docs     map[string]models.BookingRealtimeData
	watchers map[string]map[*hubIterator]struct{}
	writers  map[string]*sync.Mutex
	clock    clock.Clock
	buffer   int
}

func NewHub(c clock.Clock, buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		docs:     make(map[string]models.BookingRealtimeData),
		watchers: make(map[string]map[*hubIterator]struct{}),
		writers:  make(map[string]*sync.Mutex),
		clock:    c,
		buffer:   buffer,
	}
}

type hubIterator struct {
	hub       *Hub
	bookingID string
	ctx       context.Context
	ch        chan models.BookingRealtimeData
	stopped   chan struct{}
	stopOnce  sync.Once
}

// Watch starts with the current document, if any, like a Firestore listener.
func (h *Hub) Watch(ctx context.Context, bookingID string) (SnapshotIterator, error) {
	it := &hubIterator{
		hub:       h,
		bookingID: bookingID,
		ctx:       ctx,
		ch:        make(chan models.BookingRealtimeData, h.buffer),
		stopped:   make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.watchers[bookingID] == nil {
		h.watchers[bookingID] = make(map[*hubIterator]struct{})
	}
	h.watchers[bookingID][it] = struct{}{}
	if doc, ok := h.docs[bookingID]; ok {
		it.ch <- cloneData(doc)
	}
	return it, nil
}

func (it *hubIterator) Next() (*models.BookingRealtimeData, error) {
	select {
	case d := <-it.ch:
		return &d, nil
	case <-it.stopped:
		return nil, iterator.Done
	case <-it.ctx.Done():
		return nil, it.ctx.Err()
	}
}

func (it *hubIterator) Stop() {
	it.stopOnce.Do(func() {
		close(it.stopped)
		it.hub.mu.Lock()
		delete(it.hub.watchers[it.bookingID], it)
		it.hub.mu.Unlock()
	})
}

// Snapshot returns the current document.
func (h *Hub) Snapshot(bookingID string) (models.BookingRealtimeData, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	doc, ok := h.docs[bookingID]
	return cloneData(doc), ok
}

func (h *Hub) PublishStatus(_ context.Context, bookingID string, status models.BookingStatus, message string) error {
	h.update(bookingID, func(d *models.BookingRealtimeData, now time.Time) {
		d.Status = status
		if message != "" {
			d.AppendMessage(newMessage(message, status, now))
		}
	})
	return nil
}

func (h *Hub) UpdateLocation(_ context.Context, bookingID string, loc models.PartnerLocation, etaMinutes *int) error {
	h.update(bookingID, func(d *models.BookingRealtimeData, _ time.Time) {
		d.PartnerLocation = &loc
		if etaMinutes != nil {
			eta := *etaMinutes
			d.ETAMinutes = &eta
		}
	})
	return nil
}

func (h *Hub) AppendMessage(_ context.Context, bookingID string, message string) error {
	h.update(bookingID, func(d *models.BookingRealtimeData, now time.Time) {
		d.AppendMessage(newMessage(message, d.Status, now))
	})
	return nil
}

// update applies fn and fans the new document out to every watcher of the
// booking. A full watcher buffer blocks later writes to the same booking
// until that watcher reads or goes away.
func (h *Hub) update(bookingID string, fn func(*models.BookingRealtimeData, time.Time)) {
	h.mu.Lock()
	w, ok := h.writers[bookingID]
	if !ok {
		w = &sync.Mutex{}
		h.writers[bookingID] = w
	}
	h.mu.Unlock()

	w.Lock()
	defer w.Unlock()

	h.mu.Lock()
	now := h.clock.Now()
	doc := h.docs[bookingID]
	doc.BookingID = bookingID
	fn(&doc, now)
	doc.LastUpdated = now
	h.docs[bookingID] = doc

	targets := make([]*hubIterator, 0, len(h.watchers[bookingID]))
	for it := range h.watchers[bookingID] {
		targets = append(targets, it)
	}
	h.mu.Unlock()

	for _, it := range targets {
		select {
		case it.ch <- cloneData(doc):
		case <-it.stopped:
		case <-it.ctx.Done():
		}
	}
}

func cloneData(d models.BookingRealtimeData) models.BookingRealtimeData {
	d.Messages = append([]models.StatusMessage(nil), d.Messages...)
	if d.PartnerLocation != nil {
		loc := *d.PartnerLocation
		d.PartnerLocation = &loc
	}
	if d.ETAMinutes != nil {
		eta := *d.ETAMinutes
		d.ETAMinutes = &eta
	}
	return d
}
