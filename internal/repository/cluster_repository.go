package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/database"
	"github.com/jengzang/firewatch-backend-go/internal/models"
)

// ClusterRepository handles database operations for cluster snapshots
type ClusterRepository struct {
	db *sql.DB
}

// NewClusterRepository creates a new cluster repository
func NewClusterRepository(db *sql.DB) *ClusterRepository {
	return &ClusterRepository{db: db}
}

// SaveBatch stores the cluster snapshots of a run in one transaction
func (r *ClusterRepository) SaveBatch(records []models.ClusterRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO cluster_records (
			run_id, cluster_id, hotspot_count, center_lat, center_lon,
			west, south, east, north, area_km2, total_frp, avg_frp, max_frp,
			intensity, confidence_level, first_detection, last_detection,
			burned_area_hectares, burned_confidence, perimeter_km, polygon_json,
			biome, co2_tons, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().Unix()
	return database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare cluster insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			_, err := stmt.Exec(
				rec.RunID, rec.ClusterID, rec.HotspotCount, rec.CenterLat, rec.CenterLon,
				rec.West, rec.South, rec.East, rec.North, rec.AreaKm2, rec.TotalFRP, rec.AvgFRP, rec.MaxFRP,
				rec.Intensity, rec.ConfidenceLevel, rec.FirstDetection.Unix(), rec.LastDetection.Unix(),
				rec.BurnedAreaHectares, rec.BurnedConfidence, rec.PerimeterKm, rec.PolygonJSON,
				rec.Biome, rec.CO2Tons, now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert cluster %s: %w", rec.ClusterID, err)
			}
		}
		return nil
	})
}

// ListByRun retrieves the clusters of a run, largest first
func (r *ClusterRepository) ListByRun(runID string) ([]models.ClusterRecord, error) {
	query := `
		SELECT id, run_id, cluster_id, hotspot_count, center_lat, center_lon,
			   west, south, east, north, area_km2, total_frp, avg_frp, max_frp,
			   intensity, confidence_level, first_detection, last_detection,
			   burned_area_hectares, burned_confidence, perimeter_km, polygon_json,
			   biome, co2_tons, created_at
		FROM cluster_records
		WHERE run_id = ?
		ORDER BY hotspot_count DESC, id
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clusters: %w", err)
	}
	defer rows.Close()

	records := []models.ClusterRecord{}
	for rows.Next() {
		var rec models.ClusterRecord
		var first, last, created int64
		err := rows.Scan(
			&rec.ID, &rec.RunID, &rec.ClusterID, &rec.HotspotCount, &rec.CenterLat, &rec.CenterLon,
			&rec.West, &rec.South, &rec.East, &rec.North, &rec.AreaKm2, &rec.TotalFRP, &rec.AvgFRP, &rec.MaxFRP,
			&rec.Intensity, &rec.ConfidenceLevel, &first, &last,
			&rec.BurnedAreaHectares, &rec.BurnedConfidence, &rec.PerimeterKm, &rec.PolygonJSON,
			&rec.Biome, &rec.CO2Tons, &created,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cluster: %w", err)
		}
		rec.FirstDetection = fromUnix(first)
		rec.LastDetection = fromUnix(last)
		rec.CreatedAt = fromUnix(created)
		records = append(records, rec)
	}

	return records, rows.Err()
}
