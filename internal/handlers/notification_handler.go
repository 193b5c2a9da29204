package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/middleware"
	"carenow-backend/internal/models"
	"carenow-backend/internal/notification"
	"carenow-backend/pkg/utils"
)

type NotificationHandler struct {
	notifications *notification.Service
}

func NewNotificationHandler(n *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: n}
}

func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	var input models.RegisterTokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.notifications.RegisterToken(c.Request.Context(), middleware.CurrentActor(c).ID, input.Token); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "push token registered", nil)
}

func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.notifications.List(c.Request.Context(), middleware.CurrentActor(c).ID, queryLimit(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "notifications", list)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.notifications.MarkRead(c.Request.Context(), middleware.CurrentActor(c).ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "notification marked as read", nil)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), middleware.CurrentActor(c).ID); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "all notifications marked as read", nil)
}

func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	pref, err := h.notifications.Preferences(c.Request.Context(), middleware.CurrentActor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "notification preferences", pref)
}

func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	var input models.UpdatePreferenceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	pref, err := h.notifications.UpdatePreferences(c.Request.Context(), middleware.CurrentActor(c).ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "notification preferences updated", pref)
}

func (h *NotificationHandler) SubscribeTopic(c *gin.Context) {
	if err := h.notifications.SubscribeTopic(c.Request.Context(), middleware.CurrentActor(c).ID, c.Param("topic")); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "subscribed", nil)
}

func (h *NotificationHandler) UnsubscribeTopic(c *gin.Context) {
	if err := h.notifications.UnsubscribeTopic(c.Request.Context(), middleware.CurrentActor(c).ID, c.Param("topic")); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "unsubscribed", nil)
}
