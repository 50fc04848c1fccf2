package repository

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

// MaxGridCells bounds a single grid response
const MaxGridCells = 10000

// GridRepository aggregates stored hotspots into geohash cells
type GridRepository struct {
	db *sql.DB
}

// NewGridRepository creates a new grid repository
func NewGridRepository(db *sql.DB) *GridRepository {
	return &GridRepository{db: db}
}

// GetGridCells groups the hotspots matching filter by geohash of
// filter.Precision. Cells below MinCount are dropped; the densest come first.
func (r *GridRepository) GetGridCells(filter models.GridFilter) ([]models.GridCell, error) {
	where, args := hotspotWhere(filter.HotspotFilter())
	query := "SELECT latitude, longitude, frp, confidence, acquired_at FROM hotspots" + where

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grid hotspots: %w", err)
	}
	defer rows.Close()

	cells := make(map[string]*models.GridCell)
	for rows.Next() {
		var lat, lon, frp float64
		var confidence string
		var acquired int64
		if err := rows.Scan(&lat, &lon, &frp, &confidence, &acquired); err != nil {
			return nil, fmt.Errorf("failed to scan grid hotspot: %w", err)
		}

		id := spatial.EncodeGeohash(lat, lon, filter.Precision)
		at := fromUnix(acquired)

		c, ok := cells[id]
		if !ok {
			box := spatial.DecodeGeohash(id)
			c = &models.GridCell{
				GridID:         id,
				Precision:      len(id),
				Center:         box.Center(),
				BBox:           box,
				FirstDetection: at,
				LastDetection:  at,
			}
			cells[id] = c
		}

		c.HotspotCount++
		c.TotalFRP += frp
		if frp > c.MaxFRP {
			c.MaxFRP = frp
		}
		if models.Confidence(confidence) == models.ConfidenceHigh {
			c.HighConfidence++
		}
		if at.Before(c.FirstDetection) {
			c.FirstDetection = at
		}
		if at.After(c.LastDetection) {
			c.LastDetection = at
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grid hotspots: %w", err)
	}

	out := make([]models.GridCell, 0, len(cells))
	for _, c := range cells {
		if c.HotspotCount < filter.MinCount {
			continue
		}
		out = append(out, *c)
	}

	// Order by hotspot count descending (hottest cells first)
	sort.Slice(out, func(i, j int) bool {
		if out[i].HotspotCount != out[j].HotspotCount {
			return out[i].HotspotCount > out[j].HotspotCount
		}
		return out[i].GridID < out[j].GridID
	})
	if len(out) > MaxGridCells {
		out = out[:MaxGridCells]
	}
	return out, nil
}
