package models

import "time"

// DetectionRun is one ingest-and-cluster pass over a hotspot batch
type DetectionRun struct {
	ID string `json:"id" db:"id"`

	Source    string `json:"source" db:"source"`         // firms, upload
	SourceRef string `json:"source_ref" db:"source_ref"` // satellite product or uploader

	// Status
	Status          string `json:"status" db:"status"` // pending, running, completed, failed, cancelled
	ProgressPercent int    `json:"progress_percent" db:"progress_percent"`

	// Parameters
	DistanceKm       float64 `json:"distance_km" db:"distance_km"`
	TimeWindowHours  float64 `json:"time_window_hours" db:"time_window_hours"`
	BurnedAreaMethod string  `json:"burned_area_method" db:"burned_area_method"`

	// Results
	TotalHotspots     int     `json:"total_hotspots" db:"total_hotspots"`
	NewHotspots       int     `json:"new_hotspots" db:"new_hotspots"`
	ClusterCount      int     `json:"cluster_count" db:"cluster_count"`
	TotalAreaHectares float64 `json:"total_area_hectares" db:"total_area_hectares"`
	ResultSummary     string  `json:"result_summary,omitempty" db:"result_summary"` // JSON object
	ErrorMessage      string  `json:"error_message,omitempty" db:"error_message"`

	// Metadata
	CreatedBy   string     `json:"created_by,omitempty" db:"created_by"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// RunStatus constants
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusCancelled = "cancelled"
)

// RunSource constants
const (
	RunSourceFIRMS  = "firms"
	RunSourceUpload = "upload"
)

// IsTerminal reports whether the run can no longer change state
func (r *DetectionRun) IsTerminal() bool {
	return r.Status == RunStatusCompleted || r.Status == RunStatusFailed || r.Status == RunStatusCancelled
}
