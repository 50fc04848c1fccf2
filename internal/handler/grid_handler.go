package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/service"
	"github.com/jengzang/firewatch-backend-go/pkg/response"
)

// GridHandler handles HTTP requests for the hotspot density grid
type GridHandler struct {
	service *service.GridService
}

// NewGridHandler creates a new grid handler
func NewGridHandler(service *service.GridService) *GridHandler {
	return &GridHandler{service: service}
}

// GetGridCells handles GET /api/v1/hotspots/grid. format=geojson returns the
// cells as polygons.
func (h *GridHandler) GetGridCells(c *gin.Context) {
	var filter models.GridFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	cells, err := h.service.GetGridCells(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "geojson" {
		response.Success(c, service.GridGeoJSON(cells))
		return
	}
	response.Success(c, gin.H{
		"cells": cells,
		"count": len(cells),
	})
}
