package config

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "CLUSTER_DISTANCE_KM", "DEFAULT_PREDICTION_HOURS", "RATE_WINDOW", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != ":8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.ClusterDistanceKm != 5 {
		t.Errorf("ClusterDistanceKm = %v, want 5", cfg.ClusterDistanceKm)
	}
	if !reflect.DeepEqual(cfg.DefaultPredictionHours, []float64{1, 3, 6}) {
		t.Errorf("DefaultPredictionHours = %v", cfg.DefaultPredictionHours)
	}
	if cfg.RateWindow != time.Minute {
		t.Errorf("RateWindow = %v", cfg.RateWindow)
	}
	if cfg.IsDebug() {
		t.Error("default log level should not be debug")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("CLUSTER_DISTANCE_KM", "2.5")
	t.Setenv("CLUSTER_TIME_WINDOW_HOURS", "12")
	t.Setenv("DEFAULT_PREDICTION_HOURS", "2, 4")
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("FIRMS_COUNTRY", "bra")

	cfg := Load()

	if cfg.Port != ":9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.ClusterDistanceKm != 2.5 {
		t.Errorf("ClusterDistanceKm = %v", cfg.ClusterDistanceKm)
	}
	if cfg.ClusterTimeWindow() != 12*time.Hour {
		t.Errorf("ClusterTimeWindow = %v", cfg.ClusterTimeWindow())
	}
	if !reflect.DeepEqual(cfg.DefaultPredictionHours, []float64{2, 4}) {
		t.Errorf("DefaultPredictionHours = %v", cfg.DefaultPredictionHours)
	}
	if cfg.WorkerCount != 0 {
		t.Errorf("invalid WORKER_COUNT should fall back to 0, got %d", cfg.WorkerCount)
	}
	if !cfg.IsDebug() {
		t.Error("LOG_LEVEL=DEBUG should enable debug")
	}
	if cfg.FIRMSCountry != "BRA" {
		t.Errorf("FIRMSCountry = %q", cfg.FIRMSCountry)
	}
}
