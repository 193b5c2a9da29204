package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/bookingflow"
	"carenow-backend/internal/flowsession"
	"carenow-backend/internal/middleware"
	"carenow-backend/pkg/utils"
)

// BookingFlowHandler drives the booking wizard server-side: each session
// owns one state machine and every call returns the resulting state.
type BookingFlowHandler struct {
	sessions *flowsession.Manager
}

func NewBookingFlowHandler(sessions *flowsession.Manager) *BookingFlowHandler {
	return &BookingFlowHandler{sessions: sessions}
}

func (h *BookingFlowHandler) Create(c *gin.Context) {
	s := h.sessions.Create(c.Request.Context(), middleware.CurrentActor(c))
	utils.APIResponse(c, http.StatusCreated, true, "booking flow started", s)
}

func (h *BookingFlowHandler) Get(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"), middleware.CurrentActor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, string(s.State.Kind), s)
}

func (h *BookingFlowHandler) Delete(c *gin.Context) {
	if err := h.sessions.Delete(c.Param("id"), middleware.CurrentActor(c).ID); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "booking flow discarded", nil)
}

// Dispatch applies one event. An error state is still a 200: the wizard
// shows the message and the session stays usable.
func (h *BookingFlowHandler) Dispatch(c *gin.Context) {
	var payload bookingflow.EventPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindError(c, err)
		return
	}
	ev, err := payload.ToEvent()
	if err != nil {
		respondError(c, err)
		return
	}

	s, err := h.sessions.Dispatch(c.Request.Context(), c.Param("id"), middleware.CurrentActor(c).ID, ev)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, s.State.Kind != bookingflow.KindError, string(s.State.Kind), s)
}
