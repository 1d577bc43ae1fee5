package adminsignature

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

// GET /admin-signatures
func (h *Handler) ListSignatures(c *gin.Context) {
	sigs, err := h.Service.ListSignatures(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch signatures"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sigs})
}

// GET /admin-signatures/:id
func (h *Handler) GetSignature(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	sig, err := h.Service.GetSignature(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "signature not found"})
		return
	}
	c.JSON(http.StatusOK, sig)
}

// POST /admin-signatures
func (h *Handler) CreateSignature(c *gin.Context) {
	var req CreateSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sig, err := h.Service.CreateSignature(c.Request.Context(), req, middleware.GetUserID(c), middleware.GetIPFromContext(c))
	if err != nil {
		if errors.Is(err, ErrInvalidImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create signature"})
		return
	}
	c.JSON(http.StatusCreated, sig)
}

// PUT /admin-signatures/:id
func (h *Handler) UpdateSignature(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	var req UpdateSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sig, err := h.Service.UpdateSignature(c.Request.Context(), uint(id), req, middleware.GetUserID(c), middleware.GetIPFromContext(c))
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "signature not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sig)
}

// DELETE /admin-signatures/:id
func (h *Handler) DeleteSignature(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	if err := h.Service.DeleteSignature(c.Request.Context(), uint(id), middleware.GetUserID(c), middleware.GetIPFromContext(c)); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "signature not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signature deleted"})
}

// POST /admin-signatures/:id/set-default
func (h *Handler) SetDefaultSignature(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature ID"})
		return
	}

	if err := h.Service.SetDefaultSignature(c.Request.Context(), uint(id), middleware.GetUserID(c), middleware.GetIPFromContext(c)); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "signature not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to set default signature"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "default signature updated"})
}
