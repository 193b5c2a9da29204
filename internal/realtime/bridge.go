package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"

	"carenow-backend/internal/metrics"
	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type Bridge struct {
	feed    ChangeFeed
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewBridge(feed ChangeFeed, m *metrics.Metrics, log zerolog.Logger) *Bridge {
	return &Bridge{
		feed:    feed,
		metrics: m,
		log:     log.With().Str("component", "realtime").Logger(),
	}
}

// Subscription delivers every snapshot of one booking's tracking document,
// in order and without collapsing repeats. It ends on Close, on context
// cancellation, or when the feed fails; it never reconnects.
type Subscription struct {
	bookingID string
	updates   chan models.BookingRealtimeData
	cancel    context.CancelFunc
	it        SnapshotIterator
	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

func (b *Bridge) Subscribe(ctx context.Context, bookingID string) (*Subscription, error) {
	if bookingID == "" {
		return nil, errs.Markf(models.ErrValidation, "booking id is required")
	}

	ctx, cancel := context.WithCancel(ctx)
	it, err := b.feed.Watch(ctx, bookingID)
	if err != nil {
		cancel()
		return nil, errs.Mark(errs.Wrap(err, "failed to open tracking feed"), models.ErrUnavailable)
	}

	sub := &Subscription{
		bookingID: bookingID,
		updates:   make(chan models.BookingRealtimeData),
		cancel:    cancel,
		it:        it,
		done:      make(chan struct{}),
	}
	b.metrics.TrackingSubscriptions.Inc()
	go b.pump(ctx, sub)
	return sub, nil
}

func (b *Bridge) pump(ctx context.Context, sub *Subscription) {
	defer func() {
		sub.it.Stop()
		b.metrics.TrackingSubscriptions.Dec()
		close(sub.updates)
		close(sub.done)
	}()

	for {
		data, err := sub.it.Next()
		if err != nil {
			if !errors.Is(err, iterator.Done) && ctx.Err() == nil {
				b.log.Warn().Err(err).Str("booking_id", sub.bookingID).Msg("tracking feed failed")
				sub.setErr(err)
			}
			return
		}

		select {
		case sub.updates <- *data:
			b.metrics.TrackingUpdates.Inc()
		case <-ctx.Done():
			return
		}
	}
}

// Updates is closed when the subscription ends.
func (s *Subscription) Updates() <-chan models.BookingRealtimeData {
	return s.updates
}

// Err reports why the stream ended; nil after a normal Close.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Close stops the feed and waits for the pump to exit. Safe to call twice.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		s.it.Stop()
	})
	<-s.done
}
