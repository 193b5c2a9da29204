package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/middleware"
	"carenow-backend/internal/models"
	"carenow-backend/pkg/utils"
)

// GetProfile mengambil data user yang sedang login
func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, err := h.auth.Profile(c.Request.Context(), middleware.CurrentActor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "profile", user)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var input models.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.auth.UpdateProfile(c.Request.Context(), middleware.CurrentActor(c).ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "profile updated", user)
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	if err := h.auth.DeleteAccount(c.Request.Context(), middleware.CurrentActor(c).ID); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "account deleted", nil)
}
