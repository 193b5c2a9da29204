package bookingflow

import (
	"time"

	"carenow-backend/internal/models"
)

type Kind string

const (
	KindInitial              Kind = "initial"
	KindLoading              Kind = "loading"
	KindError                Kind = "error"
	KindServicesLoaded       Kind = "services_loaded"
	KindServiceSelected      Kind = "service_selected"
	KindDateTimeSelected     Kind = "date_time_selected"
	KindPartnersLoading      Kind = "partners_loading"
	KindPartnersLoaded       Kind = "partners_loaded"
	KindPartnerSelected      Kind = "partner_selected"
	KindReadyForConfirmation Kind = "ready_for_confirmation"
	KindCreating             Kind = "creating"
	KindCreated              Kind = "created"
	KindCancelled            Kind = "cancelled"
)

// Transient kinds are only ever seen by an observer; Dispatch never returns
// them.
func (k Kind) Transient() bool {
	return k == KindLoading || k == KindPartnersLoading || k == KindCreating
}

// State is one screen of the booking wizard. Only the fields relevant to
// Kind are set.
type State struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message,omitempty"`
	Err     error  `json:"-"`

	Services []models.Service `json:"services,omitempty"`
	Service  *models.Service  `json:"service,omitempty"`
	Date     *time.Time       `json:"date,omitempty"`
	TimeSlot string           `json:"time_slot,omitempty"`
	Partners []models.Partner `json:"partners,omitempty"`
	Partner  *models.Partner  `json:"partner,omitempty"`

	Request    *models.BookingRequest `json:"request,omitempty"`
	TotalPrice float64                `json:"total_price,omitempty"`
	Missing    []string               `json:"missing,omitempty"`

	Booking *models.Booking `json:"booking,omitempty"`
}

func errorState(err error) State {
	return State{Kind: KindError, Message: err.Error(), Err: err}
}
