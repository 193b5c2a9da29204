package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/auth"
	"carenow-backend/internal/middleware"
	"carenow-backend/internal/models"
	"carenow-backend/pkg/utils"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(a *auth.Service) *AuthHandler {
	return &AuthHandler{auth: a}
}

// REGISTER
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "registration successful, please log in", user)
}

// LOGIN
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.auth.Login(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "login successful", session)
}

// FirebaseLogin exchanges a Firebase ID token (phone OTP) for our JWT.
func (h *AuthHandler) FirebaseLogin(c *gin.Context) {
	var input models.FirebaseLoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.auth.FirebaseLogin(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "login successful", session)
}

func (h *AuthHandler) PasswordReset(c *gin.Context) {
	var input models.PasswordResetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), input.Email); err != nil {
		respondError(c, err)
		return
	}
	// same answer whether or not the email exists
	utils.APIResponse(c, http.StatusOK, true, "if the email is registered, a reset link has been sent", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.auth.Logout(c.Request.Context(), middleware.CurrentActor(c).ID); err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "logged out", nil)
}
