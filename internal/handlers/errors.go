package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

// statusFor maps an error category to its HTTP status.
func statusFor(err error) int {
	switch {
	case errs.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errs.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errs.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errs.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errs.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errs.Is(err, models.ErrInvalidTransition), errs.Is(err, models.ErrCancellationWindow):
		return http.StatusUnprocessableEntity
	case errs.Is(err, models.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope. Internal errors are attached to
// the gin context for the request logger and hidden from the client.
func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	if code == http.StatusInternalServerError {
		msg = "internal server error"
	}
	utils.APIResponse(c, code, false, msg, nil)
}

// respondBindError reports binding failures field by field.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		utils.APIResponse(c, http.StatusBadRequest, false, "invalid input", fields)
		return
	}
	utils.APIResponse(c, http.StatusBadRequest, false, "invalid input", err.Error())
}
