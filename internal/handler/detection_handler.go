package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/firewatch-backend-go/internal/middleware"
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/service"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
	"github.com/jengzang/firewatch-backend-go/pkg/response"
)

// DetectionHandler handles clustering and detection run requests
type DetectionHandler struct {
	service *service.DetectionService
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(service *service.DetectionService) *DetectionHandler {
	return &DetectionHandler{service: service}
}

// ClusterRequest is the body of a stateless clustering request
type ClusterRequest struct {
	Hotspots        []models.Hotspot `json:"hotspots" binding:"required"`
	DistanceKm      float64          `json:"distance_km"`
	TimeWindowHours float64          `json:"time_window_hours"`
	GeoJSON         bool             `json:"geojson"`
}

// Cluster handles POST /api/v1/clusters
func (h *DetectionHandler) Cluster(c *gin.Context) {
	var req ClusterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if req.DistanceKm < 0 || req.TimeWindowHours < 0 {
		response.BadRequest(c, "distance_km and time_window_hours must not be negative")
		return
	}

	result := h.service.ClusterHotspots(req.Hotspots, req.DistanceKm, req.TimeWindowHours)
	if !req.GeoJSON {
		response.Success(c, result)
		return
	}

	features := make([]spatial.Feature, len(result.Clusters))
	for i, cl := range result.Clusters {
		features[i] = cl.Feature()
	}
	response.Success(c, gin.H{
		"clusters":   result.Clusters,
		"statistics": result.Statistics,
		"geojson":    spatial.NewFeatureCollection(features...),
	})
}

// StartRun handles POST /api/v1/runs
func (h *DetectionHandler) StartRun(c *gin.Context) {
	var req service.StartRunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "Invalid request body")
		return
	}

	createdBy := c.GetString(middleware.UserKey)
	if createdBy == "" {
		createdBy = "anonymous"
	}

	run, err := h.service.StartRun(req, createdBy)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Accepted(c, run)
}

// ListRuns handles GET /api/v1/runs
func (h *DetectionHandler) ListRuns(c *gin.Context) {
	var filter models.RunFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	runs, err := h.service.ListRuns(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"runs":   runs,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetRun handles GET /api/v1/runs/:id
func (h *DetectionHandler) GetRun(c *gin.Context) {
	run, err := h.service.GetRun(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, run)
}

// ListRunClusters handles GET /api/v1/runs/:id/clusters
func (h *DetectionHandler) ListRunClusters(c *gin.Context) {
	clusters, err := h.service.ListClusters(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, clusters)
}

// RunGeoJSON handles GET /api/v1/runs/:id/geojson. The collection is returned
// bare so that map clients can load the URL directly.
func (h *DetectionHandler) RunGeoJSON(c *gin.Context) {
	fc, err := h.service.RunGeoJSON(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

// CancelRun handles DELETE /api/v1/runs/:id
func (h *DetectionHandler) CancelRun(c *gin.Context) {
	if err := h.service.CancelRun(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Run cancelled successfully"})
}
