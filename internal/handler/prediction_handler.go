package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jengzang/firewatch-backend-go/internal/prediction/risk"
	"github.com/jengzang/firewatch-backend-go/internal/prediction/spread"
	"github.com/jengzang/firewatch-backend-go/internal/service"
	"github.com/jengzang/firewatch-backend-go/pkg/response"
)

// PredictionHandler handles spread, risk and evacuation requests
type PredictionHandler struct {
	service *service.PredictionService
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(service *service.PredictionService) *PredictionHandler {
	return &PredictionHandler{service: service}
}

// BatchPredictionRequest is the body of POST /api/v1/spread/predict/batch
type BatchPredictionRequest struct {
	Requests []spread.PredictionRequest `json:"requests" binding:"required"`
}

// RiskRequest is the body of POST /api/v1/risk
type RiskRequest struct {
	Latitude          float64  `json:"latitude"`
	Longitude         float64  `json:"longitude"`
	TemperatureC      float64  `json:"temperature_celsius"`
	HumidityPercent   float64  `json:"humidity_percent"`
	WindSpeedKmh      float64  `json:"wind_speed_kmh"`
	DaysWithoutRain   int      `json:"days_without_rain"`
	VegetationDryness *float64 `json:"vegetation_dryness"`
	Biome             string   `json:"biome"`
}

// ForecastQuery are the query parameters of GET /api/v1/risk/forecast.
// The base conditions are optional; all four must be given to override the defaults.
type ForecastQuery struct {
	Lat         float64  `form:"lat"`
	Lon         float64  `form:"lon"`
	Days        int      `form:"days"`
	Temperature *float64 `form:"temperature"`
	Humidity    *float64 `form:"humidity"`
	Wind        *float64 `form:"wind"`
	DaysDry     *int     `form:"daysDry"`
}

// Rothermel handles POST /api/v1/spread/rothermel
func (h *PredictionHandler) Rothermel(c *gin.Context) {
	var req service.RothermelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.Rothermel(req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, result)
}

// Predict handles POST /api/v1/spread/predict
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req spread.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	prediction, err := h.service.Predict(req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Success(c, gin.H{
		"prediction": prediction,
		"geojson":    prediction.FeatureCollection(),
	})
}

// PredictBatch handles POST /api/v1/spread/predict/batch
func (h *PredictionHandler) PredictBatch(c *gin.Context) {
	var req BatchPredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	predictions, err := h.service.PredictBatch(c.Request.Context(), req.Requests)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{"predictions": predictions, "count": len(predictions)})
}

// Risk handles POST /api/v1/risk
func (h *PredictionHandler) Risk(c *gin.Context) {
	var req RiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	dryness := risk.DefaultDryness
	if req.VegetationDryness != nil {
		dryness = *req.VegetationDryness
	}

	assessment, err := h.service.AssessRisk(risk.Conditions{
		Latitude:          req.Latitude,
		Longitude:         req.Longitude,
		TemperatureC:      req.TemperatureC,
		HumidityPercent:   req.HumidityPercent,
		WindSpeedKmh:      req.WindSpeedKmh,
		DaysWithoutRain:   req.DaysWithoutRain,
		VegetationDryness: dryness,
		Biome:             req.Biome,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, assessment)
}

// RiskForecast handles GET /api/v1/risk/forecast
func (h *PredictionHandler) RiskForecast(c *gin.Context) {
	var q ForecastQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	var base *risk.BaseConditions
	if q.Temperature != nil && q.Humidity != nil && q.Wind != nil && q.DaysDry != nil {
		base = &risk.BaseConditions{
			TemperatureC:    *q.Temperature,
			HumidityPercent: *q.Humidity,
			WindSpeedKmh:    *q.Wind,
			DaysDry:         *q.DaysDry,
		}
	}

	forecast, err := h.service.Forecast(q.Lat, q.Lon, q.Days, base)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, gin.H{
		"latitude":  q.Lat,
		"longitude": q.Lon,
		"forecast":  forecast,
	})
}

// Evacuation handles POST /api/v1/evacuation
func (h *PredictionHandler) Evacuation(c *gin.Context) {
	var req service.EvacuationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	plan, err := h.service.Evacuate(req)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Success(c, plan)
}
