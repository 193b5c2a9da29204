package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/booking"
	"carenow-backend/internal/catalog"
	"carenow-backend/internal/middleware"
	"carenow-backend/internal/models"
	"carenow-backend/internal/notification"
	"carenow-backend/internal/partner"
	"carenow-backend/pkg/utils"
)

type AdminHandler struct {
	bookings      *booking.Service
	catalog       *catalog.Service
	partners      *partner.Service
	notifications *notification.Service
}

func NewAdminHandler(b *booking.Service, cat *catalog.Service, p *partner.Service, n *notification.Service) *AdminHandler {
	return &AdminHandler{bookings: b, catalog: cat, partners: p, notifications: n}
}

// Dashboard menampilkan ringkasan performa bisnis
func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.bookings.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "admin dashboard", stats)
}

// Bookings: GET /admin/bookings?status=&from=&to=&limit=
func (h *AdminHandler) Bookings(c *gin.Context) {
	from, err := queryDate(c, "from")
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := h.bookings.List(c.Request.Context(), models.BookingFilter{
		Status:    models.BookingStatus(c.Query("status")),
		UserID:    c.Query("user_id"),
		PartnerID: c.Query("partner_id"),
		From:      from,
		To:        to,
		Limit:     queryLimit(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "bookings", list)
}

func (h *AdminHandler) CancelBooking(c *gin.Context) {
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
	utils.APIResponse(c, http.StatusOK, true, "booking cancelled", b)
}

// Services lists the whole catalog, inactive entries included.
func (h *AdminHandler) Services(c *gin.Context) {
	services, err := h.catalog.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "services", services)
}

func (h *AdminHandler) CreateService(c *gin.Context) {
	var input models.CreateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	service, err := h.catalog.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "service created", service)
}

// UpdateService changes price, copy or the active flag.
func (h *AdminHandler) UpdateService(c *gin.Context) {
	var input models.UpdateServiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	service, err := h.catalog.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "service updated", service)
}

func (h *AdminHandler) PendingPartners(c *gin.Context) {
	partners, err := h.partners.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "partners awaiting verification", partners)
}

func (h *AdminHandler) VerifyPartner(c *gin.Context) {
	p, err := h.partners.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "partner verified", p)
}

func (h *AdminHandler) Broadcast(c *gin.Context) {
	var input models.BroadcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.notifications.Broadcast(c.Request.Context(), input); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "broadcast sent", nil)
}
