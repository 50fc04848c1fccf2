package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/database"
	"github.com/jengzang/firewatch-backend-go/internal/models"
)

const hotspotColumns = `id, latitude, longitude, brightness, bright_t31, scan, track, frp,
	acquired_at, satellite, instrument, version, confidence, daynight, source`

// HotspotRepository handles database operations for hotspot detections
type HotspotRepository struct {
	db *sql.DB
}

// NewHotspotRepository creates a new hotspot repository
func NewHotspotRepository(db *sql.DB) *HotspotRepository {
	return &HotspotRepository{db: db}
}

// InsertBatch stores hotspots in one transaction, ignoring detections whose
// geohash and acquisition time are already known. Returns the number of new rows.
func (r *HotspotRepository) InsertBatch(hotspots []models.Hotspot, runID string) (int, error) {
	if len(hotspots) == 0 {
		return 0, nil
	}

	query := `
		INSERT OR IGNORE INTO hotspots (
			dedup_key, latitude, longitude, brightness, bright_t31, scan, track, frp,
			acquired_at, satellite, instrument, version, confidence, daynight, source,
			run_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	inserted := 0
	now := time.Now().Unix()
	err := database.Transaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare hotspot insert: %w", err)
		}
		defer stmt.Close()

		var run interface{}
		if runID != "" {
			run = runID
		}

		for _, h := range hotspots {
			result, err := stmt.Exec(
				h.DedupKey(),
				h.Latitude,
				h.Longitude,
				h.Brightness,
				h.BrightT31,
				h.Scan,
				h.Track,
				h.FRP,
				h.AcquiredAt.Unix(),
				h.Satellite,
				h.Instrument,
				h.Version,
				string(h.Confidence),
				h.DayNight,
				h.Source,
				run,
				now,
			)
			if err != nil {
				return fmt.Errorf("failed to insert hotspot: %w", err)
			}
			if n, err := result.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// List retrieves hotspots with filtering and pagination, newest first
func (r *HotspotRepository) List(filter models.HotspotFilter) ([]models.Hotspot, int64, error) {
	where, args := hotspotWhere(filter)

	var total int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM hotspots"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count hotspots: %w", err)
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 100
	}
	if filter.PageSize > 1000 {
		filter.PageSize = 1000
	}
	offset := (filter.Page - 1) * filter.PageSize

	query := "SELECT " + hotspotColumns + " FROM hotspots" + where +
		" ORDER BY acquired_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.PageSize, offset)

	hotspots, err := r.query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	return hotspots, total, nil
}

// hotspotWhere builds the WHERE clause shared by the hotspot and grid queries
func hotspotWhere(filter models.HotspotFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if filter.HasBBox() {
		conditions = append(conditions, "latitude BETWEEN ? AND ?", "longitude BETWEEN ? AND ?")
		args = append(args, filter.MinLat, filter.MaxLat, filter.MinLon, filter.MaxLon)
	}
	if filter.Since > 0 {
		conditions = append(conditions, "acquired_at >= ?")
		args = append(args, filter.Since)
	}
	if filter.Until > 0 {
		conditions = append(conditions, "acquired_at <= ?")
		args = append(args, filter.Until)
	}
	if filter.Confidence != "" {
		conditions = append(conditions, "confidence = ?")
		args = append(args, string(models.ParseConfidence(filter.Confidence)))
	}
	if filter.MinFRP > 0 {
		conditions = append(conditions, "frp >= ?")
		args = append(args, filter.MinFRP)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// ListSince retrieves every hotspot acquired at or after since, oldest first
func (r *HotspotRepository) ListSince(since time.Time) ([]models.Hotspot, error) {
	query := "SELECT " + hotspotColumns + " FROM hotspots WHERE acquired_at >= ? ORDER BY acquired_at, id"
	return r.query(query, since.Unix())
}

// ListByRun retrieves the hotspots first stored by a detection run
func (r *HotspotRepository) ListByRun(runID string) ([]models.Hotspot, error) {
	query := "SELECT " + hotspotColumns + " FROM hotspots WHERE run_id = ? ORDER BY acquired_at, id"
	return r.query(query, runID)
}

// Count returns the number of stored hotspots
func (r *HotspotRepository) Count() (int64, error) {
	var count int64
	if err := r.db.QueryRow("SELECT COUNT(*) FROM hotspots").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count hotspots: %w", err)
	}
	return count, nil
}

func (r *HotspotRepository) query(query string, args ...interface{}) ([]models.Hotspot, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotspots: %w", err)
	}
	defer rows.Close()

	hotspots := []models.Hotspot{}
	for rows.Next() {
		var h models.Hotspot
		var acquired int64
		var confidence string
		err := rows.Scan(
			&h.ID, &h.Latitude, &h.Longitude, &h.Brightness, &h.BrightT31, &h.Scan, &h.Track, &h.FRP,
			&acquired, &h.Satellite, &h.Instrument, &h.Version, &confidence, &h.DayNight, &h.Source,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hotspot: %w", err)
		}
		h.AcquiredAt = fromUnix(acquired)
		h.Confidence = models.Confidence(confidence)
		hotspots = append(hotspots, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hotspots: %w", err)
	}
	return hotspots, nil
}
