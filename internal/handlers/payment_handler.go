package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"carenow-backend/internal/booking"
	"carenow-backend/internal/models"
	"carenow-backend/internal/payment"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

type PaymentHandler struct {
	bookings *booking.Service
	log      zerolog.Logger
}

func NewPaymentHandler(b *booking.Service, log zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{bookings: b, log: log.With().Str("component", "payment_webhook").Logger()}
}

// Notification receives Midtrans HTTP notifications. Unknown orders are
// acknowledged with 200 so Midtrans stops retrying them.
func (h *PaymentHandler) Notification(c *gin.Context) {
	var n payment.Notification

	// 1. Decode JSON dari Midtrans
	if err := c.ShouldBindJSON(&n); err != nil {
		respondBindError(c, err)
		return
	}

	// 2. Verifikasi signature lalu update booking
	b, err := h.bookings.ApplyPaymentNotification(c.Request.Context(), n)
	if err != nil {
		if errs.Is(err, models.ErrNotFound) {
			h.log.Warn().Str("order_id", n.OrderID).Msg("notification for unknown order")
			utils.APIResponse(c, http.StatusOK, true, "order not found, ignored", nil)
			return
		}
		h.log.Error().Err(err).Str("order_id", n.OrderID).Msg("payment notification failed")
		respondError(c, err)
		return
	}

	utils.APIResponse(c, http.StatusOK, true, "notification processed", gin.H{
		"booking_id":     b.ID,
		"status":         b.Status,
		"payment_status": b.PaymentStatus,
	})
}
