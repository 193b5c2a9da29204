package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/booking"
	"carenow-backend/internal/middleware"
	"carenow-backend/internal/models"
	"carenow-backend/internal/realtime"
	"carenow-backend/pkg/utils"
)

type BookingHandler struct {
	bookings *booking.Service
	bridge   *realtime.Bridge
}

func NewBookingHandler(b *booking.Service, bridge *realtime.Bridge) *BookingHandler {
	return &BookingHandler{bookings: b, bridge: bridge}
}

// Create is the one-shot alternative to the booking-flow wizard.
func (h *BookingHandler) Create(c *gin.Context) {
	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	req, err := input.ToRequest()
	if err != nil {
		respondError(c, err)
		return
	}

	b, err := h.bookings.Submit(c.Request.Context(), middleware.CurrentActor(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "booking created", b)
}

// List: riwayat booking milik client yang login
func (h *BookingHandler) List(c *gin.Context) {
	list, err := h.bookings.ListForUser(c.Request.Context(), middleware.CurrentActor(c).ID,
		models.BookingStatus(c.Query("status")), queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "bookings", list)
}

func (h *BookingHandler) Get(c *gin.Context) {
	b, err := h.bookings.Get(c.Request.Context(), c.Param("id"), middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "booking", b)
}

func (h *BookingHandler) Cancel(c *gin.Context) {
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

// Track streams the booking's tracking document as server-sent events, one
// "status" event per change, until the client disconnects.
func (h *BookingHandler) Track(c *gin.Context) {
	ctx := c.Request.Context()
	b, err := h.bookings.Get(ctx, c.Param("id"), middleware.CurrentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	sub, err := h.bridge.Subscribe(ctx, b.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case data, ok := <-sub.Updates():
			if !ok {
				if err := sub.Err(); err != nil {
					c.SSEvent("error", gin.H{"message": err.Error()})
				}
				return false
			}
			c.SSEvent("status", data)
			return true
		}
	})
}
