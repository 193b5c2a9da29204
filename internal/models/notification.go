package models

import "time"

const (
	NotificationBooking   = "booking"
	NotificationReview    = "review"
	NotificationPromotion = "promotion"
	NotificationSystem    = "system"
)

type Notification struct {
	ID        string            `gorm:"primaryKey;size:36" json:"id"`
	UserID    string            `gorm:"size:36;index;not null" json:"user_id"`
	Category  string            `gorm:"size:20;not null" json:"category"`
	Title     string            `gorm:"size:150" json:"title"`
	Body      string            `gorm:"type:text" json:"body"`
	Data      map[string]string `gorm:"serializer:json;type:json" json:"data,omitempty"`
	IsRead    bool              `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}

// NotificationPreference lives in its own table, keyed by user.
type NotificationPreference struct {
	UserID         string    `gorm:"primaryKey;size:36" json:"user_id"`
	BookingUpdates bool      `json:"booking_updates"`
	Reviews        bool      `json:"reviews"`
	Promotions     bool      `json:"promotions"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultNotificationPreference is what a user gets before changing anything.
func DefaultNotificationPreference(userID string) NotificationPreference {
	return NotificationPreference{
		UserID:         userID,
		BookingUpdates: true,
		Reviews:        true,
		Promotions:     false,
	}
}

// Allows reports whether a push of the given category should be delivered.
// System notifications always go through.
func (p NotificationPreference) Allows(category string) bool {
	switch category {
	case NotificationBooking:
		return p.BookingUpdates
	case NotificationReview:
		return p.Reviews
	case NotificationPromotion:
		return p.Promotions
	default:
		return true
	}
}

type RegisterTokenInput struct {
	Token string `json:"token" binding:"required"`
}

type UpdatePreferenceInput struct {
	BookingUpdates *bool `json:"booking_updates"`
	Reviews        *bool `json:"reviews"`
	Promotions     *bool `json:"promotions"`
}

type BroadcastInput struct {
	Topic    string            `json:"topic" binding:"required,max=100"`
	Title    string            `json:"title" binding:"required,max=150"`
	Body     string            `json:"body" binding:"required"`
	Data     map[string]string `json:"data"`
}
