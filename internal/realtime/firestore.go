package realtime

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/clock"
	"carenow-backend/pkg/errs"
)

// FirestoreStore keeps one document per booking in collection, keyed by
// booking id.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
	clock      clock.Clock
}

func NewFirestoreStore(client *firestore.Client, collection string, c clock.Clock) *FirestoreStore {
	return &FirestoreStore{client: client, collection: collection, clock: c}
}

func (s *FirestoreStore) doc(bookingID string) *firestore.DocumentRef {
	return s.client.Collection(s.collection).Doc(bookingID)
}

func (s *FirestoreStore) Watch(ctx context.Context, bookingID string) (SnapshotIterator, error) {
	return &firestoreIterator{bookingID: bookingID, it: s.doc(bookingID).Snapshots(ctx)}, nil
}

type firestoreIterator struct {
	bookingID string
	it        *firestore.DocumentSnapshotIterator
}

// Next skips snapshots of a document that does not exist yet.
func (f *firestoreIterator) Next() (*models.BookingRealtimeData, error) {
	for {
		snap, err := f.it.Next()
		if err != nil {
			return nil, err
		}
		if !snap.Exists() {
			continue
		}

		var data models.BookingRealtimeData
		if err := snap.DataTo(&data); err != nil {
			return nil, errs.Wrap(err, "failed to decode tracking document")
		}
		if data.BookingID == "" {
			data.BookingID = f.bookingID
		}
		return &data, nil
	}
}

func (f *firestoreIterator) Stop() {
	f.it.Stop()
}

func (s *FirestoreStore) PublishStatus(ctx context.Context, bookingID string, st models.BookingStatus, message string) error {
	return s.modify(ctx, bookingID, func(d *models.BookingRealtimeData) {
		d.Status = st
		if message != "" {
			d.AppendMessage(newMessage(message, st, s.clock.Now()))
		}
	})
}

func (s *FirestoreStore) AppendMessage(ctx context.Context, bookingID string, message string) error {
	return s.modify(ctx, bookingID, func(d *models.BookingRealtimeData) {
		d.AppendMessage(newMessage(message, d.Status, s.clock.Now()))
	})
}

// UpdateLocation merges only the location fields so it never races with the
// message list.
func (s *FirestoreStore) UpdateLocation(ctx context.Context, bookingID string, loc models.PartnerLocation, etaMinutes *int) error {
	fields := map[string]interface{}{
		"bookingId":       bookingID,
		"partnerLocation": loc,
		"lastUpdated":     s.clock.Now(),
	}
	if etaMinutes != nil {
		fields["etaMinutes"] = *etaMinutes
	}
	_, err := s.doc(bookingID).Set(ctx, fields, firestore.MergeAll)
	return errs.Wrap(err, "failed to update partner location")
}

// modify is a read-modify-write in a transaction so concurrent writers do not
// lose messages.
func (s *FirestoreStore) modify(ctx context.Context, bookingID string, fn func(*models.BookingRealtimeData)) error {
	ref := s.doc(bookingID)
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var data models.BookingRealtimeData
		snap, err := tx.Get(ref)
		switch {
		case status.Code(err) == codes.NotFound:
		case err != nil:
			return err
		default:
			if err := snap.DataTo(&data); err != nil {
				return err
			}
		}

		data.BookingID = bookingID
		fn(&data)
		data.LastUpdated = s.clock.Now()
		return tx.Set(ref, data)
	})
	return errs.Wrap(err, "failed to write tracking document")
}
