// Package realtime mirrors booking progress into a per-booking tracking
// document and streams its changes to subscribers.
package realtime

import (
	"context"
	"time"

	"carenow-backend/internal/models"
)

// SnapshotIterator yields one value per change of a tracking document. Next
// blocks; after Stop it returns iterator.Done.
type SnapshotIterator interface {
	Next() (*models.BookingRealtimeData, error)
	Stop()
}

type ChangeFeed interface {
	Watch(ctx context.Context, bookingID string) (SnapshotIterator, error)
}

// Tracker writes the tracking document. Messages are kept to the newest
// models.MaxStatusMessages.
type Tracker interface {
	PublishStatus(ctx context.Context, bookingID string, status models.BookingStatus, message string) error
	UpdateLocation(ctx context.Context, bookingID string, loc models.PartnerLocation, etaMinutes *int) error
	AppendMessage(ctx context.Context, bookingID string, message string) error
}

type Store interface {
	ChangeFeed
	Tracker
}

func newMessage(text string, status models.BookingStatus, now time.Time) models.StatusMessage {
	return models.StatusMessage{Text: text, Status: string(status), CreatedAt: now}
}
