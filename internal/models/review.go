package models

import (
	"math"
	"time"
)

const (
	MinRating        = 0.0
	MaxRating        = 5.0
	ReviewEditWindow = 24 * time.Hour
	MaxCommentLength = 1000
)

type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	BookingID string    `gorm:"size:36;uniqueIndex;not null" json:"booking_id"`
	UserID    string    `gorm:"size:36;index;not null" json:"user_id"`
	PartnerID string    `gorm:"size:36;index;not null" json:"partner_id"`
	ServiceID string    `gorm:"size:64;index" json:"service_id"`
	Rating    float64   `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	Tags      []string  `gorm:"serializer:json;type:json" json:"tags"`
	Recommend bool      `json:"recommend"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanBeEdited reports whether the author may still change the review.
func (r *Review) CanBeEdited(now time.Time) bool {
	return now.Sub(r.CreatedAt) <= ReviewEditWindow
}

// ValidRating accepts 0 to 5 in half-star steps.
func ValidRating(rating float64) bool {
	if rating < MinRating || rating > MaxRating {
		return false
	}
	return math.Mod(rating*2, 1) == 0
}

type CreateReviewInput struct {
	BookingID string   `json:"booking_id" binding:"required"`
	Rating    float64  `json:"rating" binding:"gte=0,lte=5,halfstep"`
	Comment   string   `json:"comment" binding:"max=1000"`
	Tags      []string `json:"tags" binding:"max=10,dive,max=30"`
	Recommend bool     `json:"recommend"`
}

type UpdateReviewInput struct {
	Rating    *float64 `json:"rating" binding:"omitempty,gte=0,lte=5,halfstep"`
	Comment   *string  `json:"comment" binding:"omitempty,max=1000"`
	Tags      []string `json:"tags" binding:"omitempty,max=10,dive,max=30"`
	Recommend *bool    `json:"recommend"`
}
