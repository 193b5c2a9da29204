package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/booking"
	"carenow-backend/internal/models"
	"carenow-backend/pkg/utils"
)

type FinanceHandler struct {
	bookings *booking.Service
}

func NewFinanceHandler(b *booking.Service) *FinanceHandler {
	return &FinanceHandler{bookings: b}
}

// Payments returns paid vs unpaid totals and, with ?status=paid|unpaid, the
// matching bookings.
func (h *FinanceHandler) Payments(c *gin.Context) {
	ctx := c.Request.Context()
	summary, err := h.bookings.PaymentSummary(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"summary": summary}
	if status := models.PaymentStatus(c.Query("status")); status != "" {
		list, err := h.bookings.List(ctx, models.BookingFilter{Limit: queryLimit(c)})
		if err != nil {
			respondError(c, err)
			return
		}
		filtered := make([]models.Booking, 0, len(list))
		for _, b := range list {
			if b.PaymentStatus == status && b.Status != models.BookingStatusCancelled {
				filtered = append(filtered, b)
			}
		}
		resp["bookings"] = filtered
	}
	utils.APIResponse(c, http.StatusOK, true, "payment summary", resp)
}
