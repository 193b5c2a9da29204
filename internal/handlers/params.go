package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

func queryLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	d, err := utils.ParseDate(raw)
	if err != nil {
		return nil, errs.Markf(models.ErrValidation, "%s must be YYYY-MM-DD", key)
	}
	return &d, nil
}

// queryLocation reads lat/lng; both or neither must be present.
func queryLocation(c *gin.Context) (*models.GeoPoint, error) {
	latRaw, lngRaw := c.Query("lat"), c.Query("lng")
	if latRaw == "" && lngRaw == "" {
		return nil, nil
	}
	lat, okLat := utils.StringToFloat(latRaw)
	lng, okLng := utils.StringToFloat(lngRaw)
	p := models.GeoPoint{Lat: lat, Lng: lng}
	if !okLat || !okLng || !p.Valid() {
		return nil, errs.Markf(models.ErrValidation, "lat and lng must be valid coordinates")
	}
	return &p, nil
}
