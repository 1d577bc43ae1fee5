package dashboard

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

// GET /dashboard?period=30
func (h *Handler) GetStats(c *gin.Context) {
	period, _ := strconv.Atoi(c.DefaultQuery("period", "30"))

	stats, err := h.Service.GetStats(c.Request.Context(), period)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute dashboard stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
