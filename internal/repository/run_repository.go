package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/models"
)

const runColumns = `id, source, source_ref, status, progress_percent, distance_km, time_window_hours,
	burned_area_method, total_hotspots, new_hotspots, cluster_count, total_area_hectares,
	result_summary, error_message, created_by, created_at, updated_at, started_at, completed_at`

// RunRepository handles database operations for detection runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new detection run repository
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new detection run. CreatedAt and UpdatedAt are set to now.
func (r *RunRepository) Create(run *models.DetectionRun) error {
	now := time.Now().UTC().Truncate(time.Second)
	run.CreatedAt = now
	run.UpdatedAt = now

	query := `
		INSERT INTO detection_runs (
			id, source, source_ref, status, progress_percent, distance_km, time_window_hours,
			burned_area_method, total_hotspots, new_hotspots, cluster_count, total_area_hectares,
			result_summary, error_message, created_by, created_at, updated_at, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.Source,
		run.SourceRef,
		run.Status,
		run.ProgressPercent,
		run.DistanceKm,
		run.TimeWindowHours,
		run.BurnedAreaMethod,
		run.TotalHotspots,
		run.NewHotspots,
		run.ClusterCount,
		run.TotalAreaHectares,
		run.ResultSummary,
		run.ErrorMessage,
		run.CreatedBy,
		run.CreatedAt.Unix(),
		run.UpdatedAt.Unix(),
		nullableUnix(run.StartedAt),
		nullableUnix(run.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create detection run: %w", err)
	}

	return nil
}

// GetByID retrieves a detection run, or ErrNotFound
func (r *RunRepository) GetByID(id string) (*models.DetectionRun, error) {
	query := "SELECT " + runColumns + " FROM detection_runs WHERE id = ?"

	run, err := scanRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get detection run: %w", err)
	}

	return run, nil
}

// List retrieves detection runs with optional filters, newest first
func (r *RunRepository) List(filter models.RunFilter) ([]*models.DetectionRun, error) {
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}

	query := "SELECT " + runColumns + " FROM detection_runs"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list detection runs: %w", err)
	}
	defer rows.Close()

	runs := []*models.DetectionRun{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan detection run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// UpdateProgress updates the progress of a running detection run
func (r *RunRepository) UpdateProgress(id string, progressPercent int) error {
	query := `
		UPDATE detection_runs
		SET progress_percent = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	_, err := r.db.Exec(query, progressPercent, time.Now().Unix(), id, models.RunStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to update run progress: %w", err)
	}

	return nil
}

// MarkAsRunning marks a pending run as running
func (r *RunRepository) MarkAsRunning(id string) error {
	now := time.Now().Unix()
	query := `
		UPDATE detection_runs
		SET status = ?, started_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	return r.transition(query, "running", models.RunStatusRunning, now, now, id, models.RunStatusPending)
}

// MarkAsCompleted stores the results of a finished run
func (r *RunRepository) MarkAsCompleted(run *models.DetectionRun) error {
	now := time.Now().Unix()
	query := `
		UPDATE detection_runs
		SET status = ?, progress_percent = 100, total_hotspots = ?, new_hotspots = ?,
			cluster_count = ?, total_area_hectares = ?, result_summary = ?,
			completed_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	return r.transition(query, "completed",
		models.RunStatusCompleted,
		run.TotalHotspots,
		run.NewHotspots,
		run.ClusterCount,
		run.TotalAreaHectares,
		run.ResultSummary,
		now,
		now,
		run.ID,
		models.RunStatusRunning,
	)
}

// MarkAsFailed marks a run as failed with an error message
func (r *RunRepository) MarkAsFailed(id string, errorMessage string) error {
	now := time.Now().Unix()
	query := `
		UPDATE detection_runs
		SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)
	`

	return r.transition(query, "failed",
		models.RunStatusFailed, errorMessage, now, now, id, models.RunStatusPending, models.RunStatusRunning)
}

// MarkAsCancelled cancels a pending or running run
func (r *RunRepository) MarkAsCancelled(id string) error {
	now := time.Now().Unix()
	query := `
		UPDATE detection_runs
		SET status = ?, error_message = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND status IN (?, ?)
	`

	return r.transition(query, "cancelled",
		models.RunStatusCancelled, "Run cancelled by user", now, now, id, models.RunStatusPending, models.RunStatusRunning)
}

// transition runs a guarded status update. A run that is missing or not in
// the expected state yields ErrNotFound.
func (r *RunRepository) transition(query, label string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to mark run as %s: %w", label, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark run as %s: %w", label, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*models.DetectionRun, error) {
	run := &models.DetectionRun{}
	var createdAt, updatedAt int64
	var startedAt, completedAt sql.NullInt64

	err := row.Scan(
		&run.ID,
		&run.Source,
		&run.SourceRef,
		&run.Status,
		&run.ProgressPercent,
		&run.DistanceKm,
		&run.TimeWindowHours,
		&run.BurnedAreaMethod,
		&run.TotalHotspots,
		&run.NewHotspots,
		&run.ClusterCount,
		&run.TotalAreaHectares,
		&run.ResultSummary,
		&run.ErrorMessage,
		&run.CreatedBy,
		&createdAt,
		&updatedAt,
		&startedAt,
		&completedAt,
	)
	if err != nil {
		return nil, err
	}

	run.CreatedAt = fromUnix(createdAt)
	run.UpdatedAt = fromUnix(updatedAt)
	run.StartedAt = fromNullableUnix(startedAt)
	run.CompletedAt = fromNullableUnix(completedAt)
	return run, nil
}
