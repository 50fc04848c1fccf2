package burned

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/analysis"
	"github.com/jengzang/firewatch-backend-go/internal/analysis/clustering"
	"github.com/jengzang/firewatch-backend-go/internal/models"
	"github.com/jengzang/firewatch-backend-go/internal/spatial"
)

var t0 = time.Date(2024, 9, 1, 3, 0, 0, 0, time.UTC)

func squareFire(frp float64) []models.Hotspot {
	corners := []spatial.Point{{Lat: -10, Lon: -55}, {Lat: -10, Lon: -54.99}, {Lat: -9.99, Lon: -54.99}, {Lat: -9.99, Lon: -55}}
	out := make([]models.Hotspot, len(corners))
	for i, p := range corners {
		out[i] = models.Hotspot{
			Latitude:   p.Lat,
			Longitude:  p.Lon,
			FRP:        frp,
			Confidence: models.ConfidenceHigh,
			AcquiredAt: t0.Add(time.Duration(i) * time.Hour),
		}
	}
	return out
}

func relErr(got, want float64) float64 {
	if want == 0 {
		return math.Abs(got)
	}
	return math.Abs(got-want) / math.Abs(want)
}

func TestParseMethod(t *testing.T) {
	tests := map[string]Method{"convex_hull": MethodConvexHull, "buffer": MethodBuffer, "hybrid": MethodHybrid, "": MethodHybrid, "bogus": MethodHybrid}
	for in, want := range tests {
		if got := ParseMethod(in); got != want {
			t.Errorf("ParseMethod(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHybridAreaUsesUnexpandedHull(t *testing.T) {
	hotspots := squareFire(100) // expansion 1 + sqrt(100)/20 = 1.5
	est := EstimateBurnedArea("F1", hotspots, MethodHybrid)

	hullHa := spatial.PolygonArea(est.Polygon) * 100
	if relErr(est.TotalHectares, hullHa*1.5) > 1e-9 {
		t.Errorf("TotalHectares = %v, want hull area %v x 1.5", est.TotalHectares, hullHa)
	}
	if len(est.Polygon) != 4 {
		t.Errorf("polygon has %d vertices, want the 4-point hull", len(est.Polygon))
	}
	if HybridExpansion(nil) != 1+math.Sqrt(10)/20 {
		t.Errorf("HybridExpansion(nil) = %v", HybridExpansion(nil))
	}
}

func TestEstimateMethods(t *testing.T) {
	single := []models.Hotspot{{Latitude: -10, Longitude: -55, AcquiredAt: t0}}

	tests := []struct {
		name      string
		hotspots  []models.Hotspot
		method    Method
		wantHa    float64
		wantVerts int
	}{
		{"convex hull with one point uses the minimum buffer", single, MethodConvexHull, minHullAreaKm2 * 100, 33},
		{"buffer with missing FRP uses one pixel radius", single, MethodBuffer, math.Pi * viirsPixelKm * viirsPixelKm * 100, 33},
		{"hybrid with one point falls back to buffer", single, MethodHybrid, math.Pi * viirsPixelKm * viirsPixelKm * 100, 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est := EstimateBurnedArea("F1", tt.hotspots, tt.method)
			if relErr(est.TotalHectares, tt.wantHa) > 1e-9 {
				t.Errorf("TotalHectares = %v, want %v", est.TotalHectares, tt.wantHa)
			}
			if len(est.Polygon) != tt.wantVerts {
				t.Errorf("polygon has %d vertices, want %d", len(est.Polygon), tt.wantVerts)
			}
		})
	}

	t.Run("convex hull area matches the hull", func(t *testing.T) {
		hotspots := squareFire(30)
		est := EstimateBurnedArea("F1", hotspots, MethodConvexHull)
		if relErr(est.TotalHectares, spatial.PolygonArea(est.Polygon)*100) > 1e-9 {
			t.Errorf("TotalHectares = %v, polygon area = %v ha", est.TotalHectares, spatial.PolygonArea(est.Polygon)*100)
		}
	})

	t.Run("buffer covers every hotspot", func(t *testing.T) {
		hotspots := squareFire(30)
		est := EstimateBurnedArea("F1", hotspots, MethodBuffer)
		for _, h := range hotspots {
			if !spatial.PointInPolygon(h.Point(), est.Polygon) {
				t.Errorf("hotspot %+v outside buffer polygon", h.Point())
			}
		}
	})
}

func TestEstimateInvariants(t *testing.T) {
	for _, frp := range []float64{0, 5, 25, 60, 150} {
		for _, method := range []Method{MethodConvexHull, MethodBuffer, MethodHybrid} {
			est := EstimateBurnedArea("F1", squareFire(frp), method)

			sum := est.SevereHectares + est.ModerateHectares + est.LightHectares
			if relErr(sum, est.TotalHectares) > 1e-9 {
				t.Errorf("frp %v %s: severity sum %v != total %v", frp, method, sum, est.TotalHectares)
			}
			if est.ConfidenceInterval[0] > est.TotalHectares || est.ConfidenceInterval[1] < est.TotalHectares {
				t.Errorf("frp %v %s: interval %v excludes %v", frp, method, est.ConfidenceInterval, est.TotalHectares)
			}
			if est.Confidence < 0 || est.Confidence > 0.95 {
				t.Errorf("frp %v %s: confidence %v out of range", frp, method, est.Confidence)
			}
			if !est.Timestamp.Equal(t0.Add(3 * time.Hour)) {
				t.Errorf("frp %v %s: timestamp = %v, want latest acquisition", frp, method, est.Timestamp)
			}
		}
	}
}

func TestSeveritySplit(t *testing.T) {
	tests := []struct {
		maxFRP              float64
		wantSevere, wantMod float64
	}{
		{150, 30, 50},
		{60, 15, 45},
		{25, 5, 35},
		{5, 2, 28},
	}
	for _, tt := range tests {
		severe, moderate, light := severitySplit(100, []float64{1, tt.maxFRP})
		if relErr(severe, tt.wantSevere) > 1e-9 || relErr(moderate, tt.wantMod) > 1e-9 {
			t.Errorf("maxFRP %v: severe/moderate = %v/%v, want %v/%v", tt.maxFRP, severe, moderate, tt.wantSevere, tt.wantMod)
		}
		if relErr(light, 100-tt.wantSevere-tt.wantMod) > 1e-9 {
			t.Errorf("maxFRP %v: light = %v", tt.maxFRP, light)
		}
	}

	if s, m, l := severitySplit(80, nil); s != 0 || m != 0 || l != 80 {
		t.Errorf("no FRP: split = %v/%v/%v, want all light", s, m, l)
	}
}

func TestEstimateEmpty(t *testing.T) {
	est := EstimateBurnedArea("F0", nil, MethodHybrid)
	if est.TotalHectares != 0 || est.Polygon == nil || len(est.Polygon) != 0 {
		t.Errorf("empty estimate = %+v", est)
	}
}

func TestExpansionRate(t *testing.T) {
	prev := Estimate{TotalHectares: 100, Timestamp: t0}
	next := Estimate{TotalHectares: 160, Timestamp: t0.Add(3 * time.Hour)}

	rate, err := ExpansionRate(prev, next)
	if err != nil || rate != 20 {
		t.Fatalf("ExpansionRate() = %v, %v; want 20", rate, err)
	}

	withRate, err := WithExpansionRate(prev, next)
	if err != nil || withRate.ExpansionRateHaPerHour == nil || *withRate.ExpansionRateHaPerHour != 20 {
		t.Fatalf("WithExpansionRate() = %+v, %v", withRate, err)
	}

	if _, err := ExpansionRate(next, prev); !errors.Is(err, ErrInvalidTimeOrder) {
		t.Errorf("reversed order: err = %v, want ErrInvalidTimeOrder", err)
	}
	if _, err := ExpansionRate(prev, prev); !errors.Is(err, ErrInvalidTimeOrder) {
		t.Errorf("same timestamp: err = %v, want ErrInvalidTimeOrder", err)
	}
}

func TestQuickAreaHectares(t *testing.T) {
	if got := QuickAreaHectares(nil, 1.2); got != 0 {
		t.Errorf("QuickAreaHectares(nil) = %v", got)
	}
	if got := QuickAreaHectares(squareFire(10)[:2], 1.2); got != 2*viirsPixelHectares {
		t.Errorf("QuickAreaHectares(2 points) = %v, want %v", got, 2*viirsPixelHectares)
	}
	hull := spatial.PolygonArea(spatial.ConvexHull(models.Points(squareFire(10)))) * 100
	if got := QuickAreaHectares(squareFire(10), 1.2); relErr(got, hull*1.2) > 1e-9 {
		t.Errorf("QuickAreaHectares() = %v, want %v", got, hull*1.2)
	}
}

func TestCalculatePerimeter(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		p := CalculatePerimeter("F0", nil, nil)
		if p.Elongation != 1 || len(p.Polygon) != 0 || p.Polygon == nil {
			t.Errorf("empty perimeter = %+v", p)
		}
	})

	t.Run("few points get a near-circular buffer", func(t *testing.T) {
		p := CalculatePerimeter("F1", squareFire(0)[:2], nil)
		if p.Compactness < 0.99 || p.Compactness > 1 {
			t.Errorf("Compactness = %v, want ~1", p.Compactness)
		}
		if p.HeadDirectionDeg != nil || p.HeadRateMPerMin != nil {
			t.Error("head fields set without wind")
		}
	})

	t.Run("hull is pushed outwards by FRP", func(t *testing.T) {
		plain := CalculatePerimeter("F1", squareFire(0), nil)
		hot := CalculatePerimeter("F1", squareFire(50), nil)
		if relErr(hot.AreaHectares, plain.AreaHectares*1.5*1.5) > 1e-3 {
			t.Errorf("hot area = %v, want %v", hot.AreaHectares, plain.AreaHectares*2.25)
		}
		if plain.Elongation < 0.9 || plain.Elongation > 1.1 {
			t.Errorf("square elongation = %v, want ~1", plain.Elongation)
		}
	})

	t.Run("wind sets the head", func(t *testing.T) {
		p := CalculatePerimeter("F1", squareFire(50), &Wind{DirectionDeg: 270, SpeedKmh: 30})
		if p.HeadDirectionDeg == nil || *p.HeadDirectionDeg != 270 {
			t.Fatalf("HeadDirectionDeg = %v", p.HeadDirectionDeg)
		}
		if *p.HeadRateMPerMin != HeadRate(30, 50) || HeadRate(30, 50) != 20 {
			t.Errorf("HeadRateMPerMin = %v, want 20", *p.HeadRateMPerMin)
		}
	})
}

func TestTrackChange(t *testing.T) {
	prev := Perimeter{AreaHectares: 100, PerimeterKm: 4, Timestamp: t0}
	next := Perimeter{AreaHectares: 150, PerimeterKm: 5, Timestamp: t0.Add(2 * time.Hour)}

	c, err := TrackChange(prev, next)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Change{
		TimeDifferenceHours:     2,
		AreaChangeHectares:      50,
		AreaChangeRateHaPerHour: 25,
		PerimeterChangeKm:       1,
		IsGrowing:               true,
		GrowthPercentage:        50,
	}
	if c != want {
		t.Errorf("TrackChange() = %+v, want %+v", c, want)
	}

	if _, err := TrackChange(next, prev); !errors.Is(err, ErrInvalidTimeOrder) {
		t.Errorf("reversed order: err = %v", err)
	}
}

func TestFirePolygon(t *testing.T) {
	center := spatial.Point{Lat: -8, Lon: -50}
	circle := FirePolygon(center, 500, nil, 3)
	if len(circle) != 33 || circle[0] != circle[32] {
		t.Fatalf("circle ring has %d points", len(circle))
	}
	dir := 90.0
	ellipse := FirePolygon(center, 500, &dir, 3)
	if relErr(spatial.PolygonArea(ellipse)*100, 500) > 0.02 {
		t.Errorf("ellipse area = %v ha, want ~500", spatial.PolygonArea(ellipse)*100)
	}
}

func TestAreaAnalyzer(t *testing.T) {
	a := analysis.GetAnalyzer(AnalyzerName, analysis.Params{BurnedAreaMethod: "convex_hull"})
	if a == nil || a.GetName() != AnalyzerName {
		t.Fatalf("analyzer not registered: %v", a)
	}

	cluster, err := clustering.NewFireCluster("FIRE-0001", squareFire(20))
	if err != nil {
		t.Fatal(err)
	}
	result, err := a.Analyze(context.Background(), cluster)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	var record models.ClusterRecord
	result.Apply(&record)
	if record.BurnedAreaHectares <= 0 || record.PerimeterKm <= 0 {
		t.Errorf("record = %+v", record)
	}
	if !strings.HasPrefix(record.PolygonJSON, "[[-10,-55]") {
		t.Errorf("PolygonJSON = %q, want [lat, lon] pairs", record.PolygonJSON)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Analyze(ctx, cluster); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled Analyze() err = %v", err)
	}
}
