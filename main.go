package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"scholar-graph/config"
	"scholar-graph/graph"
	"scholar-graph/lock"
	"scholar-graph/services"
	"scholar-graph/storage"
	"scholar-graph/store"
)

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-API-KEY", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}
	if origins := cfg.CORSOriginList(); len(origins) > 0 {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	} else {
		cc.AllowAllOrigins = true
	}
	return cors.New(cc)
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.LogMode == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	logging, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	if err := cfg.Validate(); err != nil {
		logging.Fatal("Invalid configuration", zap.Error(err))
	}

	// Setup Database Connection
	st, err := store.Open(cfg, logging)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer st.Close()
	logging.Info("Successfully connected to database.", zap.String("driver", cfg.DBDriver))

	logging.Info("Running database auto-migration...")
	if err := st.AutoMigrate(); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	// Optionaler Pair-Lock für parallele Importe
	var locker lock.PairLocker = lock.Noop{}
	if cfg.RedisAddr != "" {
		rdb, err := lock.Dial(context.Background(), cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logging.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer rdb.Close()
		locker = lock.NewRedis(rdb, cfg.ImportLockTTL, logging)
		logging.Info("Redis import lock enabled", zap.String("addr", cfg.RedisAddr))
	}

	// Setup Services
	policy := graph.SignificancePolicy{
		SmallGraphThreshold: cfg.GraphSmallThreshold,
		MinConnectivity:     cfg.GraphMinConnectivity,
	}
	app := &application{
		graphs:        services.NewGraphService(st, policy, logging),
		scholars:      services.NewScholarService(st, logging),
		relationships: services.NewRelationshipService(st, logging),
		importer:      services.NewScholarImporter(st, locker, logging),
		log:           logging,
	}

	cronScheduler := cron.New()
	if cfg.S3Enabled() {
		objects, err := storage.NewS3(cfg)
		if err != nil {
			logging.Fatal("S3 client creation failed", zap.Error(err))
		}
		app.snapshots = services.NewSnapshotService(app.graphs, objects, cfg.SnapshotPrefix, cfg.BackupKeep, logging)
		if cfg.SnapshotCron != "" {
			if _, err := app.snapshots.Schedule(cronScheduler, cfg.SnapshotCron); err != nil {
				logging.Fatal("Invalid snapshot schedule", zap.String("spec", cfg.SnapshotCron), zap.Error(err))
			}
			logging.Info("Snapshot export scheduled", zap.String("spec", cfg.SnapshotCron))
		}
	} else {
		logging.Warn("S3 not configured, snapshot export disabled")
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// Setup Router
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(corsMiddleware(cfg))
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		if err := st.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	app.routes(router)

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}
