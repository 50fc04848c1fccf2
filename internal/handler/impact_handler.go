package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/burned"
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/service"
	"github.com/jengzang/firewatch-backend-go/pkg/response"
)

// ImpactHandler handles burned-area, perimeter and impact requests
type ImpactHandler struct {
	service *service.ImpactService
}

// NewImpactHandler creates a new impact handler
func NewImpactHandler(service *service.ImpactService) *ImpactHandler {
	return &ImpactHandler{service: service}
}

// BurnedAreaRequest is the body of POST /api/v1/burned-area
type BurnedAreaRequest struct {
	FireID   string           `json:"fire_id"`
	Hotspots []models.Hotspot `json:"hotspots" binding:"required"`
	Method   string           `json:"method"` // convex_hull, buffer, hybrid
	Previous *burned.Estimate `json:"previous"`
}

// PerimeterRequest is the body of POST /api/v1/perimeter
type PerimeterRequest struct {
	FireID   string            `json:"fire_id"`
	Hotspots []models.Hotspot  `json:"hotspots" binding:"required"`
	Wind     *burned.Wind      `json:"wind"`
	Previous *burned.Perimeter `json:"previous"`
}

// VegetationQuery are the query parameters of GET /api/v1/vegetation
type VegetationQuery struct {
	Lat *float64 `form:"lat" binding:"required"`
	Lon *float64 `form:"lon" binding:"required"`
}

// BurnedArea handles POST /api/v1/burned-area
func (h *ImpactHandler) BurnedArea(c *gin.Context) {
	var req BurnedAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	estimate, err := h.service.BurnedArea(req.FireID, req.Hotspots, req.Method, req.Previous)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"estimate":  estimate,
		"total_km2": estimate.TotalKm2(),
		"geojson":   estimate.Feature(),
	})
}

// Perimeter handles POST /api/v1/perimeter
func (h *ImpactHandler) Perimeter(c *gin.Context) {
	var req PerimeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.Perimeter(req.FireID, req.Hotspots, req.Wind, req.Previous)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"perimeter": result.Perimeter,
		"change":    result.Change,
		"geojson":   result.Perimeter.Feature(),
	})
}

// Biome handles POST /api/v1/impact/biome
func (h *ImpactHandler) Biome(c *gin.Context) {
	var req service.AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.Biome(req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}

// Carbon handles POST /api/v1/impact/carbon
func (h *ImpactHandler) Carbon(c *gin.Context) {
	var req service.AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.Carbon(req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}

// Vegetation handles GET /api/v1/vegetation
func (h *ImpactHandler) Vegetation(c *gin.Context) {
	var q VegetationQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "lat and lon are required")
		return
	}

	result, err := h.service.Vegetation(*q.Lat, *q.Lon)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}
