package room

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

func parseFilter(c *gin.Context) ListFilter {
	filter := ListFilter{Status: c.Query("status")}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if v := c.Query("minPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &f
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &f
		}
	}
	if v := c.Query("hasBalcony"); v != "" {
		b := v == "true" || v == "1"
		filter.HasBalcony = &b
	}
	if v := c.Query("floor"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Floor = &n
		}
	}
	return filter
}

// GET /rooms
func (h *Handler) ListRooms(c *gin.Context) {
	result, err := h.Service.ListRooms(c.Request.Context(), parseFilter(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch rooms"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GET /rooms/public (no auth, marketing site)
func (h *Handler) ListPublicRooms(c *gin.Context) {
	rooms, err := h.Service.ListPublicRooms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

// GET /rooms/:id
func (h *Handler) GetRoom(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	room, err := h.Service.GetRoom(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// POST /rooms
func (h *Handler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	room, err := h.Service.CreateRoom(c.Request.Context(), req, userID, middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create room"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

// PUT /rooms/:id
func (h *Handler) UpdateRoom(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	room, err := h.Service.UpdateRoom(c.Request.Context(), uint(id), req, userID, middleware.GetIPFromContext(c))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, room)
}

// PUT /rooms (bulk actions)
func (h *Handler) BulkUpdateRooms(c *gin.Context) {
	var req BulkRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)
	updated, err := h.Service.BulkUpdateRooms(c.Request.Context(), req, userID, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

// DELETE /rooms/:id
func (h *Handler) DeleteRoom(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	userID := middleware.GetUserID(c)
	if err := h.Service.DeleteRoom(c.Request.Context(), uint(id), userID, middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, ErrRoomsHaveBookings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}

// DELETE /rooms?ids=1,2,3 (bulk, all or nothing)
func (h *Handler) BulkDeleteRooms(c *gin.Context) {
	idsParam := c.Query("ids")
	if idsParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids query parameter is required"})
		return
	}

	var ids []uint
	for _, part := range strings.Split(idsParam, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID: " + part})
			return
		}
		ids = append(ids, uint(n))
	}

	userID := middleware.GetUserID(c)
	if err := h.Service.BulkDeleteRooms(c.Request.Context(), ids, userID, middleware.GetIPFromContext(c)); err != nil {
		if errors.Is(err, ErrRoomsHaveBookings) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete rooms"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": len(ids)})
}
