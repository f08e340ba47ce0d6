package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ErlanBelekov/travel-ease/config"
	"github.com/ErlanBelekov/travel-ease/internal/email"
	"github.com/ErlanBelekov/travel-ease/internal/health"
	"github.com/ErlanBelekov/travel-ease/internal/infrastructure/imagestore"
	"github.com/ErlanBelekov/travel-ease/internal/infrastructure/mongo"
	"github.com/ErlanBelekov/travel-ease/internal/infrastructure/postgres"
	ctxlog "github.com/ErlanBelekov/travel-ease/internal/log"
	"github.com/ErlanBelekov/travel-ease/internal/metrics"
	"github.com/ErlanBelekov/travel-ease/internal/repository"
	"github.com/ErlanBelekov/travel-ease/internal/token"
	httptransport "github.com/ErlanBelekov/travel-ease/internal/transport/http"
	"github.com/ErlanBelekov/travel-ease/internal/transport/http/handler"
	"github.com/ErlanBelekov/travel-ease/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	deps := map[string]health.Pinger{}

	// Stores
	var (
		userRepo repository.UserRepository
		planRepo repository.PlanRepository
	)
	switch cfg.StoreDriver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			stop()
			log.Fatalf("db: %v", err)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, pool); err != nil {
			stop()
			log.Fatalf("migrate: %v", err)
		}
		userRepo = postgres.NewUserRepository(pool)
		planRepo = postgres.NewPlanRepository(pool)
		deps["postgres"] = pool
	default:
		store, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			stop()
			log.Fatalf("mongo: %v", err)
		}
		defer func() {
			if err := store.Close(context.Background()); err != nil {
				logger.Error("mongo disconnect", "error", err)
			}
		}()

		if err := store.EnsureIndexes(ctx); err != nil {
			stop()
			log.Fatalf("mongo indexes: %v", err)
		}
		userRepo = store.Users()
		planRepo = store.Plans()
		deps["mongo"] = store
	}

	// Images
	var (
		images    repository.ImageStore
		uploadDir string
	)
	switch cfg.ImageStore {
	case "s3":
		s3Store, err := imagestore.NewS3(ctx, imagestore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			stop()
			log.Fatalf("s3: %v", err)
		}
		images = s3Store
		deps["s3"] = s3Store
	default:
		disk, err := imagestore.NewDisk(cfg.UploadDir, cfg.PublicBaseURL)
		if err != nil {
			stop()
			log.Fatalf("image dir: %v", err)
		}
		images = disk
		uploadDir = cfg.UploadDir
		deps["uploads"] = disk
	}

	tokens := token.NewService([]byte(cfg.JWTSecret))
	mailer := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.MailFrom, logger)

	authUsecase := usecase.NewAuthUsecase(userRepo, tokens, mailer, cfg.BcryptCost, logger)
	planUsecase := usecase.NewPlanUsecase(planRepo, images, cfg.PlaceholderImageURL(), logger)
	imageUsecase := usecase.NewImageUsecase(images, cfg.MaxUploadBytes, logger)

	metrics.Register()
	checker := health.NewChecker(deps, logger, prometheus.DefaultRegisterer)

	router := httptransport.NewRouter(logger,
		httptransport.RouterConfig{
			CORSOrigin:     cfg.CORSOrigin,
			MaxUploadBytes: cfg.MaxUploadBytes,
			UploadDir:      uploadDir,
			AssetsDir:      cfg.AssetsDir,
		},
		httptransport.Handlers{
			Auth:  handler.NewAuthHandler(authUsecase, logger),
			Plan:  handler.NewPlanHandler(planUsecase, logger),
			Image: handler.NewImageHandler(imageUsecase, logger),
		},
		tokens,
	)

	srv := http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port, "store", cfg.StoreDriver, "images", cfg.ImageStore)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
