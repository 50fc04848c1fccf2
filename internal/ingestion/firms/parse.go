package firms

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/models"
)

// column aliases: VIIRS products use the I-band names, MODIS the band numbers
var (
	brightnessColumns = []string{"bright_ti4", "brightness"}
	brightT31Columns  = []string{"bright_ti5", "bright_t31"}
)

var requiredColumns = []string{"latitude", "longitude", "acq_date", "acq_time"}

type header map[string]int

func (h header) get(row []string, names ...string) (string, bool) {
	for _, name := range names {
		if i, ok := h[name]; ok && i < len(row) {
			return strings.TrimSpace(row[i]), true
		}
	}
	return "", false
}

func (h header) float(row []string, names ...string) (float64, error) {
	raw, ok := h.get(row, names...)
	if !ok || raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", names[0], raw)
	}
	return v, nil
}

// ParseCSV decodes a FIRMS CSV export. Rows that cannot be parsed are skipped
// and counted; only an unreadable header is an error.
func ParseCSV(r io.Reader, source string) ([]models.Hotspot, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return []models.Hotspot{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read csv header: %w", err)
	}

	h := make(header, len(first))
	for i, name := range first {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := h[name]; !ok {
			return nil, 0, fmt.Errorf("csv header missing column %q", name)
		}
	}

	hotspots := []models.Hotspot{}
	skipped := 0
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			log.Printf("[FIRMS] Failed to read row %d: %v", line, err)
			skipped++
			continue
		}

		hotspot, err := parseRow(h, row, source)
		if err != nil {
			log.Printf("[FIRMS] Failed to parse row %d: %v", line, err)
			skipped++
			continue
		}
		hotspots = append(hotspots, hotspot)
	}

	return hotspots, skipped, nil
}

func parseRow(h header, row []string, source string) (models.Hotspot, error) {
	var hs models.Hotspot
	var err error

	latRaw, _ := h.get(row, "latitude")
	if hs.Latitude, err = strconv.ParseFloat(latRaw, 64); err != nil || hs.Latitude < -90 || hs.Latitude > 90 {
		return hs, fmt.Errorf("invalid latitude %q", latRaw)
	}
	lonRaw, _ := h.get(row, "longitude")
	if hs.Longitude, err = strconv.ParseFloat(lonRaw, 64); err != nil || hs.Longitude < -180 || hs.Longitude > 180 {
		return hs, fmt.Errorf("invalid longitude %q", lonRaw)
	}

	if hs.Brightness, err = h.float(row, brightnessColumns...); err != nil {
		return hs, err
	}
	if hs.BrightT31, err = h.float(row, brightT31Columns...); err != nil {
		return hs, err
	}
	if hs.Scan, err = h.float(row, "scan"); err != nil {
		return hs, err
	}
	if hs.Track, err = h.float(row, "track"); err != nil {
		return hs, err
	}
	if hs.FRP, err = h.float(row, "frp"); err != nil {
		return hs, err
	}

	date, _ := h.get(row, "acq_date")
	clock, _ := h.get(row, "acq_time")
	if hs.AcquiredAt, err = ParseAcquisition(date, clock); err != nil {
		return hs, err
	}

	hs.Satellite, _ = h.get(row, "satellite")
	hs.Instrument, _ = h.get(row, "instrument")
	hs.Version, _ = h.get(row, "version")
	hs.DayNight, _ = h.get(row, "daynight")
	conf, _ := h.get(row, "confidence")
	hs.Confidence = models.ParseConfidence(conf)
	hs.Source = source

	return hs, nil
}

// ParseAcquisition combines the acq_date (YYYY-MM-DD) and acq_time (HHMM UTC,
// leading zeros often dropped) columns
func ParseAcquisition(date, clock string) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	if len(clock) == 0 || len(clock) > 4 {
		return time.Time{}, fmt.Errorf("invalid acq_time %q", clock)
	}
	if _, err := strconv.Atoi(clock); err != nil {
		return time.Time{}, fmt.Errorf("invalid acq_time %q", clock)
	}
	clock = strings.Repeat("0", 4-len(clock)) + clock

	t, err := time.Parse("2006-01-02 1504", strings.TrimSpace(date)+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid acquisition %s %s: %w", date, clock, err)
	}
	return t.UTC(), nil
}
