package bookingflow

import (
	"strings"
	"time"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

// Event is a user action fed to Machine.Dispatch.
type Event interface {
	eventName() string
}

type (
	LoadServices  struct{}
	SelectService struct{ ServiceID string }
	SelectDate    struct{ Date time.Time }

	SelectTimeSlot struct {
		Slot  string
		Hours float64
	}

	LoadPartners  struct{}
	SelectPartner struct{ PartnerID string }

	SetAddress struct {
		Address string
		Lat     float64
		Lng     float64
	}

	SetInstructions struct{ Text string }
	Submit          struct{}

	// Cancel targets BookingID, or the booking created by the last Submit
	// when empty.
	Cancel struct {
		BookingID string
		Reason    string
	}

	Reset struct{}
)

func (LoadServices) eventName() string    { return "load_services" }
func (SelectService) eventName() string   { return "select_service" }
func (SelectDate) eventName() string      { return "select_date" }
func (SelectTimeSlot) eventName() string  { return "select_time_slot" }
func (LoadPartners) eventName() string    { return "load_partners" }
func (SelectPartner) eventName() string   { return "select_partner" }
func (SetAddress) eventName() string      { return "set_address" }
func (SetInstructions) eventName() string { return "set_instructions" }
func (Submit) eventName() string          { return "submit" }
func (Cancel) eventName() string          { return "cancel" }
func (Reset) eventName() string           { return "reset" }

// EventPayload is the wire form of an event, as posted by the app.
type EventPayload struct {
	Type      string   `json:"type" binding:"required"`
	ServiceID string   `json:"service_id"`
	Date      string   `json:"date"`
	TimeSlot  string   `json:"time_slot"`
	Hours     float64  `json:"hours"`
	PartnerID string   `json:"partner_id"`
	Address   string   `json:"address"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	Text      string   `json:"text"`
	BookingID string   `json:"booking_id"`
	Reason    string   `json:"reason"`
}

// ToEvent validates the payload shape for its type. Business rules are left
// to the machine.
func (p EventPayload) ToEvent() (Event, error) {
	switch strings.ToLower(strings.TrimSpace(p.Type)) {
	case "load_services":
		return LoadServices{}, nil
	case "select_service":
		return SelectService{ServiceID: p.ServiceID}, nil
	case "select_date":
		date, err := utils.ParseDate(p.Date)
		if err != nil {
			return nil, errs.Markf(models.ErrValidation, "date must be YYYY-MM-DD")
		}
		return SelectDate{Date: date}, nil
	case "select_time_slot":
		return SelectTimeSlot{Slot: p.TimeSlot, Hours: p.Hours}, nil
	case "load_partners":
		return LoadPartners{}, nil
	case "select_partner":
		return SelectPartner{PartnerID: p.PartnerID}, nil
	case "set_address":
		if p.Lat == nil || p.Lng == nil {
			return nil, errs.Markf(models.ErrValidation, "lat and lng are required")
		}
		return SetAddress{Address: p.Address, Lat: *p.Lat, Lng: *p.Lng}, nil
	case "set_instructions":
		return SetInstructions{Text: p.Text}, nil
	case "submit":
		return Submit{}, nil
	case "cancel":
		return Cancel{BookingID: p.BookingID, Reason: p.Reason}, nil
	case "reset":
		return Reset{}, nil
	}
	return nil, errs.Markf(models.ErrValidation, "unknown event type %q", p.Type)
}
