package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jengzang/firewatch-backend-go/internal/api"
	"github.com/jengzang/firewatch-backend-go/internal/config"
	"github.com/jengzang/firewatch-backend-go/internal/database"
	"github.com/jengzang/firewatch-backend-go/internal/ingestion/firms"
	"github.com/jengzang/firewatch-backend-go/internal/ingestion/vegetation"
	"github.com/jengzang/firewatch-backend-go/internal/repository"
	"github.com/jengzang/firewatch-backend-go/internal/scheduler"
	"github.com/jengzang/firewatch-backend-go/internal/service"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// 加载配置
	cfg := config.Load()

	if len(os.Args) > 1 && os.Args[1] == "token" {
		if err := runToken(cfg.JWTSecret, os.Args[2:], os.Stdout); err != nil {
			log.Fatal("Failed to issue token:", err)
		}
		return
	}

	// 初始化数据库
	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()
	db := database.GetDB()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hotspotRepo := repository.NewHotspotRepository(db)
	runRepo := repository.NewRunRepository(db)
	clusterRepo := repository.NewClusterRepository(db)
	lookup := vegetation.NewStaticLookup()

	var source service.HotspotSource
	if cfg.FIRMSAPIKey != "" {
		source = firms.NewClient(firms.Config{
			APIKey:  cfg.FIRMSAPIKey,
			BaseURL: cfg.FIRMSBaseURL,
			Source:  cfg.FIRMSSource,
			Timeout: cfg.HTTPTimeout,
		})
	} else {
		log.Printf("FIRMS_API_KEY not set, runs require uploaded hotspots")
	}

	detectionService := service.NewDetectionService(hotspotRepo, runRepo, clusterRepo, source, lookup, service.DetectionConfig{
		DistanceKm:       cfg.ClusterDistanceKm,
		TimeWindow:       cfg.ClusterTimeWindow(),
		BurnedAreaMethod: cfg.BurnedAreaMethod,
		Workers:          cfg.WorkerCount,
		DefaultBBox:      firms.BrazilBBox,
		DefaultCountry:   cfg.FIRMSCountry,
		DefaultDays:      cfg.IngestDays,
	})

	var ingest *scheduler.IngestScheduler
	if source != nil && cfg.IngestCron != "" {
		s, err := scheduler.NewIngestScheduler(cfg.IngestCron, detectionService, cfg.IngestDays)
		if err != nil {
			log.Fatal("Failed to start scheduler:", err)
		}
		ingest = s
		ingest.Start()
	}

	// 初始化路由
	router := api.SetupRouter(ctx, cfg, api.Services{
		Hotspots:   service.NewHotspotService(hotspotRepo),
		Grid:       service.NewGridService(repository.NewGridRepository(db)),
		Detection:  detectionService,
		Impact:     service.NewImpactService(lookup),
		Prediction: service.NewPredictionService(cfg.DefaultPredictionHours, cfg.WorkerCount),
	})

	srv := &http.Server{
		Addr:              cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// 启动服务器
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if ingest != nil {
		if err := ingest.Stop(shutdownCtx); err != nil {
			log.Printf("Scheduler shutdown: %v", err)
		}
	}
	detectionService.Shutdown()
	log.Printf("Server stopped")
}
