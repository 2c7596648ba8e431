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

	"postboard/configs"
	"postboard/internal/kafka"
	"postboard/internal/migrate"
	"postboard/internal/post"
	"postboard/internal/ratelimit"
	"postboard/internal/shared/db"
	"postboard/internal/shared/httpx"
	"postboard/internal/shared/telemetry"
	"postboard/internal/upload"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	cfg := configs.LoadConfig()
	log.Printf("config: %s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.InitOTEL(ctx, "postboard")
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(c)
	}()

	// Connects on the first request.
	lazy := db.MustLazy(cfg.DatabaseURL,
		db.WithDialTimeout(cfg.DBConnectTimeout),
		db.WithOnConnect(migrate.Hook(cfg.AutoMigrate)),
	)

	events := kafka.NewWriter(cfg.KafkaBootstrapServers, cfg.KafkaTopic)
	defer events.Close()

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("upload storage: %v", err)
	}

	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		limiter = ratelimit.New(rdb)
	}

	postSvc := post.NewService(post.NewRepository(lazy, lazy.Driver()), events)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	protect := httpx.AuthMiddleware(cfg.JWTSecret)
	post.RegisterRoutes(mux, post.NewHandler(postSvc), protect)

	limit := limiter.Middleware(cfg.UploadRateLimit, cfg.UploadRateWindow, ratelimit.ByClientIP("upload"))
	upload.RegisterRoutes(mux, upload.NewHandler(storage), func(h http.Handler) http.Handler {
		return limit(protect(h))
	})

	srv := &http.Server{
		Addr:              cfg.AppPort,
		Handler:           otelhttp.NewHandler(httpx.Logging(mux), "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(c); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("postboard listening on %s (db driver %s)", cfg.AppPort, lazy.Driver())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func newStorage(ctx context.Context, cfg *configs.Config) (upload.Storage, error) {
	if cfg.UploadBackend != "s3" {
		return upload.NewDisk(cfg.UploadDir), nil
	}
	s3, err := upload.NewS3(upload.S3Config{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		UseSSL:    cfg.S3UseSSL,
		Bucket:    cfg.S3Bucket,
	})
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s3.EnsureBucket(c); err != nil {
		return nil, err
	}
	return s3, nil
}
