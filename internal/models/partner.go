package models

import "time"

type Partner struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	UserID      string  `gorm:"size:36;uniqueIndex;not null" json:"user_id"`
	Name        string  `gorm:"size:100;not null" json:"name"`
	Bio         string  `gorm:"type:text" json:"bio"`
	Rating      float64 `gorm:"default:0" json:"rating"`
	ReviewCount int     `gorm:"default:0" json:"review_count"`
	HourlyPrice float64 `json:"hourly_price"`
	// Service IDs this partner offers.
	ServiceTags []string `gorm:"serializer:json;type:json" json:"service_tags"`
	// Ensure enough integer digits for longitudes (up to ±180)
	Lat         float64   `gorm:"type:decimal(11,8)" json:"lat"`
	Lng         float64   `gorm:"type:decimal(11,8)" json:"lng"`
	IsVerified  bool      `gorm:"default:false;index" json:"is_verified"`
	IsAvailable bool      `gorm:"default:false;index" json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Filled by the availability query when a client location is known.
	DistanceKM *float64 `gorm:"-" json:"distance_km,omitempty"`
}

// Offers reports whether the partner lists serviceID among its tags.
func (p *Partner) Offers(serviceID string) bool {
	for _, tag := range p.ServiceTags {
		if tag == serviceID {
			return true
		}
	}
	return false
}

// Struct inputan dari Mitra saat update profil
type UpdatePartnerProfileInput struct {
	Name        string   `json:"name" binding:"required"`
	Bio         string   `json:"bio"`
	HourlyPrice float64  `json:"hourly_price" binding:"required,gt=0"`
	ServiceTags []string `json:"service_tags" binding:"required,min=1,dive,required"`
	Lat         float64  `json:"lat" binding:"omitempty,latitude"`
	Lng         float64  `json:"lng" binding:"omitempty,longitude"`
}

type PartnerStatusInput struct {
	IsAvailable bool     `json:"is_available"`
	Lat         *float64 `json:"lat" binding:"omitempty,latitude"`
	Lng         *float64 `json:"lng" binding:"omitempty,longitude"`
}
