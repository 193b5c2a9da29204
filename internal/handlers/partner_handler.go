package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/availability"
	"carenow-backend/internal/booking"
	"carenow-backend/internal/middleware"
	"carenow-backend/internal/models"
	"carenow-backend/internal/partner"
	"carenow-backend/internal/review"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

type PartnerHandler struct {
	partners     *partner.Service
	availability *availability.Service
	reviews      *review.Service
	bookings     *booking.Service
}

func NewPartnerHandler(p *partner.Service, a *availability.Service, r *review.Service, b *booking.Service) *PartnerHandler {
	return &PartnerHandler{partners: p, availability: a, reviews: r, bookings: b}
}

// Search: GET /partners/search?service_id=&date=&time_slot=&lat=&lng=
func (h *PartnerHandler) Search(c *gin.Context) {
	serviceID := c.Query("service_id")
	if serviceID == "" {
		respondError(c, errs.Markf(models.ErrValidation, "service_id is required"))
		return
	}
	date, err := queryDate(c, "date")
	if err != nil {
		respondError(c, err)
		return
	}
	loc, err := queryLocation(c)
	if err != nil {
		respondError(c, err)
		return
	}

	q := availability.Query{ServiceID: serviceID, TimeSlot: c.Query("time_slot"), Location: loc}
	if date != nil {
		q.Date = *date
	}
	partners, err := h.availability.Find(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "available partners", partners)
}

func (h *PartnerHandler) Reviews(c *gin.Context) {
	reviews, err := h.reviews.ListForPartner(c.Request.Context(), c.Param("id"), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "partner reviews", reviews)
}

func (h *PartnerHandler) GetProfile(c *gin.Context) {
	p, err := h.partners.Profile(c.Request.Context(), middleware.CurrentActor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "partner profile", p)
}

func (h *PartnerHandler) UpdateProfile(c *gin.Context) {
	var input models.UpdatePartnerProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.partners.UpdateProfile(c.Request.Context(), middleware.CurrentActor(c).ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "partner profile updated", p)
}

// UpdateStatus toggles availability and base location.
func (h *PartnerHandler) UpdateStatus(c *gin.Context) {
	var input models.PartnerStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	p, err := h.partners.SetStatus(c.Request.Context(), middleware.CurrentActor(c).ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "partner status updated", p)
}

func (h *PartnerHandler) Bookings(c *gin.Context) {
	list, err := h.bookings.ListForPartner(c.Request.Context(), middleware.CurrentActor(c).ID,
		models.BookingStatus(c.Query("status")), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "partner bookings", list)
}

type bookingStep func(ctx context.Context, bookingID string, actor models.Actor) (*models.Booking, error)

func (h *PartnerHandler) step(c *gin.Context, fn bookingStep, message string) {
	b, err := fn(c.Request.Context(), c.Param("id"), middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, message, b)
}

func (h *PartnerHandler) Accept(c *gin.Context) {
	h.step(c, h.bookings.Confirm, "booking accepted")
}

func (h *PartnerHandler) Start(c *gin.Context) {
	h.step(c, h.bookings.Start, "booking started")
}

func (h *PartnerHandler) Complete(c *gin.Context) {
	h.step(c, h.bookings.Complete, "booking completed")
}

func (h *PartnerHandler) Reject(c *gin.Context) {
	var input models.CancelBookingInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		respondBindError(c, err)
		return
	}

	b, err := h.bookings.Cancel(c.Request.Context(), c.Param("id"), middleware.CurrentActor(c), input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "booking rejected", b)
}

// Tracking receives location, ETA and short notes from the partner's app.
func (h *PartnerHandler) Tracking(c *gin.Context) {
	var input models.TrackingUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.bookings.UpdateTracking(c.Request.Context(), c.Param("id"), middleware.CurrentActor(c), input); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "tracking updated", nil)
}
