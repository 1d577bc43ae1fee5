package booking

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hlefebvre/coliving-backend/middleware"
)

type Handler struct {
	Service Service
}

func NewHandler(s Service) *Handler {
	return &Handler{Service: s}
}

// GET /bookings?room_id=&status=&search=&page=&limit=
func (h *Handler) ListBookings(c *gin.Context) {
	filter := ListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if v := c.Query("room_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			rid := uint(id)
			filter.RoomID = &rid
		}
	}

	result, err := h.Service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch bookings"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	b, err := h.Service.GetBooking(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /bookings
func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.Service.CreateBooking(c.Request.Context(), req, middleware.GetUserID(c), middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrRoomUnavailable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, b)
}

// PUT /bookings/:id
func (h *Handler) UpdateBooking(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	var req UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.Service.UpdateBooking(c.Request.Context(), uint(id), req, middleware.GetUserID(c), middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrRoomUnavailable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /bookings (bulk status transitions)
func (h *Handler) BulkUpdateBookings(c *gin.Context) {
	var req BulkBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.Service.BulkUpdateStatus(c.Request.Context(), req, middleware.GetUserID(c), middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DELETE /bookings/:id
func (h *Handler) DeleteBooking(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID"})
		return
	}

	if err := h.Service.DeleteBooking(c.Request.Context(), uint(id), middleware.GetUserID(c), middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, ErrNotDeletable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "not exist") || strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete booking"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "booking deleted"})
}

// DELETE /bookings?ids=1,2,3 (bulk, all or nothing)
func (h *Handler) BulkDeleteBookings(c *gin.Context) {
	idsParam := c.Query("ids")
	if idsParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids query parameter is required"})
		return
	}

	var ids []uint
	for _, part := range strings.Split(idsParam, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking ID: " + part})
			return
		}
		ids = append(ids, uint(n))
	}

	if err := h.Service.BulkDeleteBookings(c.Request.Context(), ids, middleware.GetUserID(c), middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, ErrNotDeletable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "not exist") {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete bookings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(ids)})
}
