package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/firewatch-backend-go/internal/config"
	"github.com/jengzang/firewatch-backend-go/internal/handler"
	"github.com/jengzang/firewatch-backend-go/internal/metrics"
	"github.com/jengzang/firewatch-backend-go/internal/middleware"
	"github.com/jengzang/firewatch-backend-go/internal/service"
)

// Services bundles everything the handlers depend on
type Services struct {
	Hotspots   *service.HotspotService
	Grid       *service.GridService
	Detection  *service.DetectionService
	Impact     *service.ImpactService
	Prediction *service.PredictionService
}

// SetupRouter 设置路由. ctx bounds background middleware work such as rate limiter cleanup.
func SetupRouter(ctx context.Context, cfg *config.Config, svc Services) *gin.Engine {
	if cfg.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(metrics.Middleware())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Firewatch API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	hotspotHandler := handler.NewHotspotHandler(svc.Hotspots)
	gridHandler := handler.NewGridHandler(svc.Grid)
	detectionHandler := handler.NewDetectionHandler(svc.Detection)
	impactHandler := handler.NewImpactHandler(svc.Impact)
	predictionHandler := handler.NewPredictionHandler(svc.Prediction)

	api := r.Group("/api/v1")
	if cfg.RateLimit > 0 {
		api.Use(middleware.RateLimit(middleware.NewRateLimiter(ctx, cfg.RateLimit, cfg.RateWindow)))
	}
	{
		api.GET("/hotspots", hotspotHandler.ListHotspots)
		api.GET("/hotspots/grid", gridHandler.GetGridCells)
		api.POST("/clusters", detectionHandler.Cluster)

		// 过火面积与火线
		api.POST("/burned-area", impactHandler.BurnedArea)
		api.POST("/perimeter", impactHandler.Perimeter)

		// 蔓延预测
		spread := api.Group("/spread")
		{
			spread.POST("/rothermel", predictionHandler.Rothermel)
			spread.POST("/predict", predictionHandler.Predict)
			spread.POST("/predict/batch", predictionHandler.PredictBatch)
		}

		api.POST("/risk", predictionHandler.Risk)
		api.GET("/risk/forecast", predictionHandler.RiskForecast)

		impact := api.Group("/impact")
		{
			impact.POST("/biome", impactHandler.Biome)
			impact.POST("/carbon", impactHandler.Carbon)
		}
		api.GET("/vegetation", impactHandler.Vegetation)

		api.POST("/evacuation", predictionHandler.Evacuation)

		// 检测任务
		runs := api.Group("/runs")
		{
			runs.GET("", detectionHandler.ListRuns)
			runs.GET("/:id", detectionHandler.GetRun)
			runs.GET("/:id/clusters", detectionHandler.ListRunClusters)
			runs.GET("/:id/geojson", detectionHandler.RunGeoJSON)

			auth := middleware.Auth(cfg.JWTSecret)
			runs.POST("", auth, detectionHandler.StartRun)
			runs.DELETE("/:id", auth, detectionHandler.CancelRun)
		}
	}

	return r
}
