package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/meeting-rooms/internal/audit"
	"github.com/BruksfildServices01/meeting-rooms/internal/config"
	dbpkg "github.com/BruksfildServices01/meeting-rooms/internal/db"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/lock"
	"github.com/BruksfildServices01/meeting-rooms/internal/infra/storage"
	"github.com/BruksfildServices01/meeting-rooms/internal/logger"
	"github.com/BruksfildServices01/meeting-rooms/internal/middleware"
	"github.com/BruksfildServices01/meeting-rooms/internal/routes"
	"github.com/BruksfildServices01/meeting-rooms/internal/timezone"
	ucMeeting "github.com/BruksfildServices01/meeting-rooms/internal/usecase/meeting"
)

func main() {

	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	db := dbpkg.NewDB(cfg, log)

	if err := dbpkg.SeedAdmin(db, log, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatal("failed to seed admin", zap.Error(err))
	}

	store := newStore(cfg, log)
	locker, closeLocker := newLocker(cfg, log)
	defer closeLocker()

	loc, ok := timezone.Location(cfg.Timezone)
	if !ok {
		log.Warn("unknown timezone, using UTC", zap.String("timezone", cfg.Timezone))
	}

	dispatcher := audit.NewDispatcher(audit.New(db), log, cfg.AuditQueueSize)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.Recovery(log),
		middleware.ZapLogger(log),
		middleware.Metrics(),
		middleware.CORSMiddleware(cfg.CORSOrigins),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.RegisterRoutes(r, routes.Deps{
		DB:       db,
		Config:   cfg,
		Store:    store,
		Locker:   locker,
		Audit:    dispatcher,
		Location: loc,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server running", zap.String("addr", cfg.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}

	dispatcher.Close()
}

func newStore(cfg *config.Config, log *zap.Logger) ucMeeting.FileStore {
	if cfg.UsesS3() {
		s3, err := storage.NewS3(storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatal("failed to configure s3 storage", zap.Error(err))
		}
		log.Info("using s3 storage", zap.String("bucket", cfg.S3Bucket))
		return s3
	}

	local, err := storage.NewLocal(cfg.StorageDir)
	if err != nil {
		log.Fatal("failed to configure local storage", zap.Error(err))
	}
	log.Info("using local storage", zap.String("dir", cfg.StorageDir))
	return local
}

// newLocker uses redis when REDIS_ADDR is set so every instance shares locks.
func newLocker(cfg *config.Config, log *zap.Logger) (ucMeeting.Locker, func()) {
	if cfg.RedisAddr == "" {
		return lock.NewLocal(0), func() {}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	return lock.NewRedis(client, log, cfg.LockTTL, 0), func() { _ = client.Close() }
}
