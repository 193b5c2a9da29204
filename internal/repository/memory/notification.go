package memory

import (
	"context"
	"time"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n.ID = newID(n.ID)
	stamp(&n.CreatedAt, nil, r.s.now())
	r.s.notifications[n.ID] = *n
	return nil
}

func (r *NotificationRepository) ListForUser(_ context.Context, userID string, n int) ([]models.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []models.Notification
	for _, item := range r.s.notifications {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	sortByCreatedDesc(out, func(n models.Notification) time.Time { return n.CreatedAt })
	return limit(out, n), nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.notifications[id]
	if !ok || item.UserID != userID {
		return errs.Markf(models.ErrNotFound, "notification %s not found", id)
	}
	item.IsRead = true
	r.s.notifications[id] = item
	return nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, item := range r.s.notifications {
		if item.UserID == userID && !item.IsRead {
			item.IsRead = true
			r.s.notifications[id] = item
		}
	}
	return nil
}

func (r *NotificationRepository) GetPreference(_ context.Context, userID string) (models.NotificationPreference, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if pref, ok := r.s.preferences[userID]; ok {
		return pref, nil
	}
	return models.DefaultNotificationPreference(userID), nil
}

func (r *NotificationRepository) SavePreference(_ context.Context, pref *models.NotificationPreference) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stamp(nil, &pref.UpdatedAt, r.s.now())
	r.s.preferences[pref.UserID] = *pref
	return nil
}
