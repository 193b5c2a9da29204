package models

import (
	"time"

	"carenow-backend/pkg/utils"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

// CancellationLeadTime is how far ahead of the scheduled start a client may
// still cancel. Exactly this much time left is already too late.
const CancellationLeadTime = 2 * time.Hour

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:    {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed:  {BookingStatusInProgress, BookingStatusCancelled},
	BookingStatusInProgress: {BookingStatusCompleted},
}

// ActiveStatuses hold a partner's time slot.
var ActiveStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusInProgress,
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// CanTransitionTo allows only single forward steps of
// pending -> confirmed -> in_progress -> completed, or cancellation from
// pending/confirmed.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Booking struct {
	ID            string        `gorm:"primaryKey;size:36" json:"id"`
	UserID        string        `gorm:"size:36;not null;index" json:"user_id"`
	PartnerID     string        `gorm:"size:36;index:idx_booking_partner_slot" json:"partner_id"`
	ServiceID     string        `gorm:"size:64;not null;index" json:"service_id"`
	ScheduledDate time.Time     `gorm:"type:date;index:idx_booking_partner_slot" json:"scheduled_date"`
	TimeSlot      string        `gorm:"size:32;index:idx_booking_partner_slot" json:"time_slot"`
	Hours         float64       `gorm:"not null" json:"hours"`
	TotalPrice    float64       `gorm:"not null" json:"total_price"`
	Address       string        `gorm:"type:text" json:"address"`
	Lat           float64       `gorm:"type:decimal(11,8)" json:"lat"`
	Lng           float64       `gorm:"type:decimal(11,8)" json:"lng"`
	Instructions  string        `gorm:"type:text" json:"instructions,omitempty"`
	Status        BookingStatus `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;not null;default:'unpaid'" json:"payment_status"`

	PaymentToken       string `gorm:"size:100" json:"payment_token,omitempty"`
	PaymentRedirectURL string `gorm:"size:255" json:"payment_redirect_url,omitempty"`

	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledBy        *string    `gorm:"size:36" json:"cancelled_by,omitempty"`
	ConfirmedAt        *time.Time `json:"confirmed_at,omitempty"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ScheduledStart combines the booking date with the start of its time slot.
// ok is false when the stored slot label cannot be parsed.
func (b *Booking) ScheduledStart() (time.Time, bool) {
	slot, err := utils.ParseTimeSlot(b.TimeSlot)
	if err != nil {
		return time.Time{}, false
	}
	return utils.TruncateDay(b.ScheduledDate).Add(slot.Start), true
}

// CanBeCancelled mirrors the client-side rule: only pending or confirmed
// bookings, and only while more than CancellationLeadTime remains.
func (b *Booking) CanBeCancelled(now time.Time) bool {
	if b.Status != BookingStatusPending && b.Status != BookingStatusConfirmed {
		return false
	}
	start, ok := b.ScheduledStart()
	if !ok {
		return false
	}
	return start.Sub(now) > CancellationLeadTime
}

// BookingFilter narrows admin and partner listings.
type BookingFilter struct {
	UserID    string
	PartnerID string
	Status    BookingStatus
	From      *time.Time
	To        *time.Time
	Limit     int
}

// BookingStats feeds the admin dashboard.
type BookingStats struct {
	ByStatus       map[BookingStatus]int64 `json:"by_status"`
	GrossRevenue   float64                 `json:"gross_revenue"`
	ActivePartners int64                   `json:"active_partners"`
}

// PaymentSummary feeds the finance view.
type PaymentSummary struct {
	PaidCount   int64   `json:"paid_count"`
	PaidTotal   float64 `json:"paid_total"`
	UnpaidCount int64   `json:"unpaid_count"`
	UnpaidTotal float64 `json:"unpaid_total"`
}

type CancelBookingInput struct {
	Reason string `json:"reason" binding:"max=500"`
}
