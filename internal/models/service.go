package models

import "time"

// Service categories offered in the catalog.
const (
	CategoryElderCare    = "elder_care"
	CategoryChildCare    = "child_care"
	CategoryPetCare      = "pet_care"
	CategoryHousekeeping = "housekeeping"
)

// Service is one bookable offering. BasePrice is per hour, in IDR.
type Service struct {
	ID               string    `gorm:"primaryKey;size:64" json:"id"`
	Name             string    `gorm:"size:100;not null" json:"name"`
	Description      string    `gorm:"type:text" json:"description"`
	Category         string    `gorm:"size:30;index" json:"category"`
	BasePrice        float64   `gorm:"not null" json:"base_price"`
	DurationEstimate float64   `json:"duration_estimate_hours"`
	IsActive         bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type CreateServiceInput struct {
	ID               string  `json:"id" binding:"omitempty,max=64"`
	Name             string  `json:"name" binding:"required"`
	Description      string  `json:"description"`
	Category         string  `json:"category" binding:"required,oneof=elder_care child_care pet_care housekeeping"`
	BasePrice        float64 `json:"base_price" binding:"required,gt=0"`
	DurationEstimate float64 `json:"duration_estimate_hours" binding:"omitempty,gt=0"`
}

type UpdateServiceInput struct {
	Name             *string  `json:"name"`
	Description      *string  `json:"description"`
	BasePrice        *float64 `json:"base_price" binding:"omitempty,gt=0"`
	DurationEstimate *float64 `json:"duration_estimate_hours" binding:"omitempty,gt=0"`
	IsActive         *bool    `json:"is_active"`
}
