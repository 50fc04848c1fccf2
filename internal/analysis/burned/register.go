package burned

import (
	"context"
	"encoding/json"

	"github.com/jengzang/firewatch-backend-go/internal/analysis"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/clustering"
	"github.com/jengzang/firewatch-backend-go/internal/models"
)

// AnalyzerName is the registry name of the burned-area analyzer
const AnalyzerName = "burned_area"

func init() {
	analysis.RegisterAnalyzer(AnalyzerName, NewAreaAnalyzer)
}

// AreaAnalyzer estimates the burned area of each cluster of a run
type AreaAnalyzer struct {
	*analysis.BaseAnalyzer
	method Method
}

// NewAreaAnalyzer creates a burned-area analyzer for the run's method
func NewAreaAnalyzer(params analysis.Params) analysis.ClusterAnalyzer {
	return &AreaAnalyzer{
		BaseAnalyzer: analysis.NewBaseAnalyzer(AnalyzerName),
		method:       ParseMethod(params.BurnedAreaMethod),
	}
}

// Analyze implements analysis.ClusterAnalyzer
func (a *AreaAnalyzer) Analyze(ctx context.Context, c *clustering.FireCluster) (analysis.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return EstimateBurnedArea(c.ID, c.Hotspots, a.method), nil
}

// Apply implements analysis.Result
func (e Estimate) Apply(record *models.ClusterRecord) {
	record.BurnedAreaHectares = e.TotalHectares
	record.BurnedConfidence = e.Confidence
	record.PerimeterKm = e.PerimeterKm

	ring := make([][2]float64, len(e.Polygon))
	for i, p := range e.Polygon {
		ring[i] = [2]float64{p.Lat, p.Lon}
	}
	if data, err := json.Marshal(ring); err == nil {
		record.PolygonJSON = string(data)
	}
}
