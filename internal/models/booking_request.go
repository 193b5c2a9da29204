package models

import (
	"strings"
	"time"

	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

// MaxBookingHours caps the hours of one visit.
const MaxBookingHours = 24

// GeoPoint is a WGS84 coordinate pair.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (g GeoPoint) Valid() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lng >= -180 && g.Lng <= 180
}

// BookingRequest is the unsaved aggregate of a client's wizard selections.
type BookingRequest struct {
	ServiceID          string     `json:"service_id"`
	ScheduledDate      *time.Time `json:"scheduled_date,omitempty"`
	TimeSlot           string     `json:"time_slot,omitempty"`
	Hours              float64    `json:"hours,omitempty"`
	TotalPrice         float64    `json:"total_price"`
	Address            string     `json:"address,omitempty"`
	Location           *GeoPoint  `json:"location,omitempty"`
	Instructions       string     `json:"instructions,omitempty"`
	PreferredPartnerID string     `json:"preferred_partner_id,omitempty"`
}

// Missing lists the required fields that are still unset, in wizard order.
func (r *BookingRequest) Missing() []string {
	var missing []string
	if r.ServiceID == "" {
		missing = append(missing, "service")
	}
	if r.ScheduledDate == nil || r.ScheduledDate.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(r.TimeSlot) == "" {
		missing = append(missing, "time_slot")
	}
	if r.Hours <= 0 {
		missing = append(missing, "hours")
	}
	if r.PreferredPartnerID == "" {
		missing = append(missing, "partner")
	}
	if strings.TrimSpace(r.Address) == "" || r.Location == nil {
		missing = append(missing, "address")
	}
	return missing
}

func (r *BookingRequest) IsComplete() bool {
	return len(r.Missing()) == 0
}

// Validate is the submit guard: every required field must be present and the
// slot and coordinates must be well formed.
func (r *BookingRequest) Validate() error {
	if missing := r.Missing(); len(missing) > 0 {
		return errs.Markf(ErrValidation, "missing %s", strings.Join(missing, ", "))
	}
	if _, err := utils.ParseTimeSlot(r.TimeSlot); err != nil {
		return errs.Mark(err, ErrValidation)
	}
	if !r.Location.Valid() {
		return errs.Markf(ErrValidation, "coordinates out of range")
	}
	if r.Hours > MaxBookingHours {
		return errs.Markf(ErrValidation, "hours are limited to %d", MaxBookingHours)
	}
	return nil
}

// TotalPriceFor is the single pricing rule: hourly base price times hours.
func TotalPriceFor(service *Service, hours float64) float64 {
	if service == nil || hours <= 0 {
		return 0
	}
	return service.BasePrice * hours
}

// CreateBookingInput is the direct (non-wizard) booking submission.
type CreateBookingInput struct {
	ServiceID     string  `json:"service_id" binding:"required"`
	ScheduledDate string  `json:"scheduled_date" binding:"required,datetime=2006-01-02"`
	TimeSlot      string  `json:"time_slot" binding:"required,timeslot"`
	Hours         float64 `json:"hours" binding:"required,gt=0,lte=24"`
	PartnerID     string  `json:"partner_id" binding:"required"`
	Address       string  `json:"address" binding:"required"`
	Lat           float64 `json:"lat" binding:"latitude"`
	Lng           float64 `json:"lng" binding:"longitude"`
	Instructions  string  `json:"instructions" binding:"max=1000"`
}

// ToRequest converts the HTTP payload into a BookingRequest.
func (in CreateBookingInput) ToRequest() (BookingRequest, error) {
	date, err := utils.ParseDate(in.ScheduledDate)
	if err != nil {
		return BookingRequest{}, errs.Markf(ErrValidation, "scheduled_date must be YYYY-MM-DD")
	}
	return BookingRequest{
		ServiceID:          in.ServiceID,
		ScheduledDate:      &date,
		TimeSlot:           in.TimeSlot,
		Hours:              in.Hours,
		Address:            in.Address,
		Location:           &GeoPoint{Lat: in.Lat, Lng: in.Lng},
		Instructions:       in.Instructions,
		PreferredPartnerID: in.PartnerID,
	}, nil
}
