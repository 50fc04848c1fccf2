package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/service"
	"github.com/jengzang/firewatch-backend-go/pkg/response"
)

// HotspotHandler handles HTTP requests for stored hotspots
type HotspotHandler struct {
	hotspotService *service.HotspotService
}

// NewHotspotHandler creates a new hotspot handler
func NewHotspotHandler(hotspotService *service.HotspotService) *HotspotHandler {
	return &HotspotHandler{hotspotService: hotspotService}
}

// ListHotspots handles GET /api/v1/hotspots
func (h *HotspotHandler) ListHotspots(c *gin.Context) {
	var filter models.HotspotFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	page, err := h.hotspotService.List(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Paginated(c, page.Hotspots, page.Total, page.Page, page.PageSize)
}
