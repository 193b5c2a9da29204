package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/middleware"
	"carenow-backend/internal/models"
	"carenow-backend/internal/review"
	"carenow-backend/pkg/utils"
)

type ReviewHandler struct {
	reviews *review.Service
}

func NewReviewHandler(r *review.Service) *ReviewHandler {
	return &ReviewHandler{reviews: r}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var input models.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	r, err := h.reviews.Create(c.Request.Context(), middleware.CurrentActor(c).ID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusCreated, true, "thank you for your review", r)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	var input models.UpdateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	r, err := h.reviews.Update(c.Request.Context(), middleware.CurrentActor(c).ID, c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.APIResponse(c, http.StatusOK, true, "review updated", r)
}
