package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"eventura/database/repository"
	"eventura/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VendorHandler exposes the read-only vendor catalogue.
type VendorHandler struct {
	Repo  repository.VendorRepository
	Limit int
}

func NewVendorHandler(repo repository.VendorRepository, limit int) *VendorHandler {
	return &VendorHandler{Repo: repo, Limit: limit}
}

// ListVendors handles GET /vendors?city=&minRating=&type=.
func (h *VendorHandler) ListVendors(c *gin.Context) {
	logger := getLogger(c)

	filter := models.VendorFilter{City: c.Query("city"), Limit: h.Limit}
	if raw := c.Query("minRating"); raw != "" {
		minRating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minRating must be a number"})
			return
		}
		filter.MinRating = minRating
	}
	if t := c.Query("type"); t != "" {
		filter.Types = []string{t}
	}

	vendors, err := h.Repo.ListVendors(c.Request.Context(), filter)
	if err != nil {
		logger.Error("Failed to list vendors", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vendors"})
		return
	}
	c.JSON(http.StatusOK, vendors)
}

// GetVendor handles GET /vendors/:id.
func (h *VendorHandler) GetVendor(c *gin.Context) {
	logger := getLogger(c)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor id"})
		return
	}

	details, err := h.Repo.GetVendorByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrVendorNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}
	if err != nil {
		logger.Error("Failed to load vendor", zap.Int("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load vendor"})
		return
	}
	c.JSON(http.StatusOK, details)
}
