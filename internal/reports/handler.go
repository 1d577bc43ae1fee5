package reports

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hlefebvre/coliving-backend/middleware"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

// GET /reports?type=bookings&format=csv&from=&to=
func (h *Handler) Export(c *gin.Context) {
	reportType := c.DefaultQuery("type", ReportTypeBookings)
	format := c.DefaultQuery("format", FormatCSV)

	var filter Filter
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			end := t.Add(24*time.Hour - time.Second)
			filter.To = &end
		}
	}

	data, filename, contentType, err := h.Service.Export(c.Request.Context(), reportType, format, filter, middleware.GetUserID(c), middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
