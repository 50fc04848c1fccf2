package service

import (
	"fmt"

	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/repository"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// Grid precision bounds. Precision 5 is roughly a 5 km cell, close to the
// default clustering distance.
const (
	DefaultGridPrecision = 5
	minGridPrecision     = 3
	maxGridPrecision     = 7
)

// GridService handles business logic for the hotspot density grid
type GridService struct {
	repo *repository.GridRepository
}

// NewGridService creates a new grid service
func NewGridService(repo *repository.GridRepository) *GridService {
	return &GridService{repo: repo}
}

// GetGridCells retrieves the density grid for the filter
func (s *GridService) GetGridCells(filter models.GridFilter) ([]models.GridCell, error) {
	if filter.Precision == 0 {
		filter.Precision = DefaultGridPrecision
	}
	if filter.Precision < minGridPrecision || filter.Precision > maxGridPrecision {
		return nil, fmt.Errorf("%w: precision must be within %d-%d", ErrInvalidInput, minGridPrecision, maxGridPrecision)
	}
	if filter.MinCount < 0 {
		return nil, fmt.Errorf("%w: negative minCount", ErrInvalidInput)
	}
	return s.repo.GetGridCells(filter)
}

// GridGeoJSON renders cells as polygons for map clients
func GridGeoJSON(cells []models.GridCell) spatial.FeatureCollection {
	features := make([]spatial.Feature, len(cells))
	for i, c := range cells {
		b := c.BBox
		ring := []spatial.Point{
			{Lat: b.South, Lon: b.West},
			{Lat: b.South, Lon: b.East},
			{Lat: b.North, Lon: b.East},
			{Lat: b.North, Lon: b.West},
		}
		features[i] = spatial.PolygonFeature(ring, map[string]interface{}{
			"grid_id":         c.GridID,
			"hotspot_count":   c.HotspotCount,
			"high_confidence": c.HighConfidence,
			"total_frp":       c.TotalFRP,
			"max_frp":         c.MaxFRP,
		})
	}
	return spatial.NewFeatureCollection(features...)
}
