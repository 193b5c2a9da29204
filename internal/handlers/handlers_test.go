package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{errs.Markf(models.ErrNotFound, "booking x not found"), http.StatusNotFound},
		{errs.Markf(models.ErrValidation, "bad"), http.StatusBadRequest},
		{errs.Markf(models.ErrUnauthorized, "who"), http.StatusUnauthorized},
		{errs.Markf(models.ErrForbidden, "no"), http.StatusForbidden},
		{errs.Markf(models.ErrConflict, "taken"), http.StatusConflict},
		{errs.Markf(models.ErrInvalidTransition, "pending -> completed"), http.StatusUnprocessableEntity},
		{errs.Markf(models.ErrCancellationWindow, "too late"), http.StatusUnprocessableEntity},
		{errs.Markf(models.ErrUnavailable, "down"), http.StatusServiceUnavailable},
		{errs.Wrap(errs.Markf(models.ErrConflict, "taken"), "submit"), http.StatusConflict},
		{errs.Newf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestRespondErrorHidesInternalErrors(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, errs.Newf("dial tcp 10.0.0.1:3306: connection refused"))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body utils.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "internal server error", body.Message)
	assert.Len(t, c.Errors, 1)
}

func TestCustomValidators(t *testing.T) {
	RegisterValidators()

	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var in struct {
			Slot   string  `json:"slot" binding:"required,timeslot"`
			Rating float64 `json:"rating" binding:"required,halfstep"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			respondBindError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	cases := map[string]int{
		`{"slot":"10:00-12:00","rating":4.5}`: http.StatusNoContent,
		`{"slot":"12:00-10:00","rating":4}`:   http.StatusBadRequest,
		`{"slot":"pagi","rating":4}`:          http.StatusBadRequest,
		`{"slot":"10:00-12:00","rating":4.3}`: http.StatusBadRequest,
		`{"slot":"10:00-12:00","rating":6}`:   http.StatusBadRequest,
		`not json`:                            http.StatusBadRequest,
	}
	for body, want := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)))
		assert.Equal(t, want, w.Code, body)
	}
}

func TestQueryParams(t *testing.T) {
	ctx := func(query string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+query, nil)
		return c
	}

	assert.Equal(t, 20, queryLimit(ctx("limit=20")))
	assert.Equal(t, 0, queryLimit(ctx("limit=-1")))
	assert.Equal(t, 0, queryLimit(ctx("limit=abc")))

	d, err := queryDate(ctx("date=2026-10-16"), "date")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 16, d.Day())

	d, err = queryDate(ctx(""), "date")
	assert.NoError(t, err)
	assert.Nil(t, d)

	_, err = queryDate(ctx("date=16/10/2026"), "date")
	assert.True(t, errs.Is(err, models.ErrValidation))

	loc, err := queryLocation(ctx("lat=-6.2&lng=106.8"))
	require.NoError(t, err)
	assert.InDelta(t, -6.2, loc.Lat, 1e-9)

	loc, err = queryLocation(ctx(""))
	assert.NoError(t, err)
	assert.Nil(t, loc)

	_, err = queryLocation(ctx("lat=-6.2"))
	assert.True(t, errs.Is(err, models.ErrValidation))

	_, err = queryLocation(ctx("lat=95&lng=10"))
	assert.True(t, errs.Is(err, models.ErrValidation))
}
