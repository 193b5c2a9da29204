package models

import "time"

// MaxStatusMessages bounds the rolling message list on a tracking document.
const MaxStatusMessages = 10

type PartnerLocation struct {
	Lat      float64 `json:"lat" firestore:"lat"`
	Lng      float64 `json:"lng" firestore:"lng"`
	Accuracy float64 `json:"accuracy" firestore:"accuracy"` // meters
}

type StatusMessage struct {
	Text      string    `json:"text" firestore:"text"`
	Status    string    `json:"status,omitempty" firestore:"status,omitempty"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

// BookingRealtimeData is what the tracking screen renders; one value per
// change of the booking's tracking document.
type BookingRealtimeData struct {
	BookingID       string           `json:"booking_id" firestore:"bookingId"`
	Status          BookingStatus    `json:"status" firestore:"status"`
	PartnerLocation *PartnerLocation `json:"partner_location,omitempty" firestore:"partnerLocation,omitempty"`
	ETAMinutes      *int             `json:"eta_minutes,omitempty" firestore:"etaMinutes,omitempty"`
	Messages        []StatusMessage  `json:"messages" firestore:"messages"`
	LastUpdated     time.Time        `json:"last_updated" firestore:"lastUpdated"`
}

// AppendMessage adds msg and keeps only the newest MaxStatusMessages entries.
func (d *BookingRealtimeData) AppendMessage(msg StatusMessage) {
	d.Messages = append(d.Messages, msg)
	if over := len(d.Messages) - MaxStatusMessages; over > 0 {
		d.Messages = append([]StatusMessage(nil), d.Messages[over:]...)
	}
}

// TrackingUpdateInput is posted by the assigned partner while on the way or
// on duty.
type TrackingUpdateInput struct {
	Lat        *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng        *float64 `json:"lng" binding:"omitempty,longitude"`
	Accuracy   float64  `json:"accuracy" binding:"gte=0"`
	ETAMinutes *int     `json:"eta_minutes" binding:"omitempty,gte=0"`
	Message    string   `json:"message" binding:"max=200"`
}
