package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"

	"github.com/pribylovaa/go-threads/internal/config"
	threadshttp "github.com/pribylovaa/go-threads/internal/http"
	"github.com/pribylovaa/go-threads/internal/http/handlers"
	"github.com/pribylovaa/go-threads/internal/http/middleware"
	"github.com/pribylovaa/go-threads/internal/identity"
	"github.com/pribylovaa/go-threads/internal/revalidate"
	"github.com/pribylovaa/go-threads/internal/service"
	"github.com/pribylovaa/go-threads/internal/storage/mongo"
	threadsgrpc "github.com/pribylovaa/go-threads/internal/transport/grpc"
	"github.com/pribylovaa/go-threads/pkg/redact"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (overrides CONFIG_PATH env)")
	flag.Parse()

	// .env необязателен: в контейнере переменные приходят из окружения.
	_ = godotenv.Load()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting threads-service", "env", cfg.Env)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dbCtx, dbCancel := context.WithTimeout(rootCtx, 10*time.Second)
	store, err := mongo.Shared(dbCtx, cfg)
	dbCancel()
	if err != nil {
		log.Error("mongo_connect_failed",
			slog.String("url", redact.URL(cfg.DB.URL)),
			slog.String("err", err.Error()),
		)
		rootCancel()
		os.Exit(1)
	}
	log.Info("mongo_connected",
		slog.String("url", redact.URL(cfg.DB.URL)),
		slog.Bool("transactions", cfg.DB.Transactions),
	)

	notifier, closeNotifier := setupNotifier(rootCtx, log, cfg.Redis)

	svc := service.New(store, notifier, identity.NewJWTResolver(cfg.Auth), *cfg)
	log.Info("service_initialized")

	// HTTP: API + readiness/liveness/metrics
	var ready int32 // 0 — not ready; 1 — ready

	api := threadshttp.NewRouter(handlers.New(svc, cfg.Limits), threadshttp.Options{
		Logger:  log,
		Timeout: cfg.Timeouts.Service,
		Metrics: middleware.NewMetrics(prometheus.DefaultRegisterer),
		Loaders: store,
	})

	mux := chi.NewRouter()
	mux.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Mount("/", api)

	httpAddr := cfg.HTTP.Addr()
	httpSrv := &http.Server{
		Addr:              httpAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("http_listen_start", "addr", httpAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http_serve_failed", slog.String("err", err.Error()))
		}
	}()

	// gRPC: health для оркестратора.
	grpc_prometheus.EnableHandlingTimeHistogram()

	grpcSrv := threadsgrpc.New(threadsgrpc.Options{
		Logger:     log,
		Timeout:    cfg.Timeouts.Service,
		Reflection: cfg.Env == envLocal || cfg.Env == envDev,
	})

	addr := cfg.GRPC.Addr()
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		log.Error("grpc_listen_failed",
			slog.String("addr", addr),
			slog.String("err", err.Error()),
		)
		rootCancel()
		closeNotifier()
		_ = mongo.CloseShared(context.Background())
		os.Exit(1)
	}
	log.Info("grpc_listen_start", slog.String("addr", addr))

	go grpcSrv.WatchReadiness(rootCtx, store.Ping, 5*time.Second)
	atomic.StoreInt32(&ready, 1)

	serveErrCh := make(chan error, 1)
	go func() {
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serveErrCh <- err
		}
		close(serveErrCh)
	}()

	select {
	case <-rootCtx.Done():
		log.Info("shutdown_requested")
	case err := <-serveErrCh:
		if err != nil {
			log.Error("grpc_serve_failed", slog.String("err", err.Error()))
		}
	}

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	grpcSrv.Stop(shutdownCtx)
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http_shutdown_failed", slog.String("err", err.Error()))
	}
	shutdownCancel()

	rootCancel()
	closeNotifier()
	_ = mongo.CloseShared(context.Background())

	log.Info("service_stopped")
	os.Exit(0)
}

// setupNotifier — Redis PUBLISH, если задан redis.url; иначе сигналы только логируются.
func setupNotifier(ctx context.Context, log *slog.Logger, cfg config.RedisConfig) (service.Notifier, func()) {
	if cfg.URL == "" {
		log.Info("revalidation_via_log")
		return revalidate.LogNotifier{}, func() {}
	}

	rctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := revalidate.NewRedisNotifier(rctx, cfg.URL, cfg.Channel)
	if err != nil {
		log.Warn("redis_unavailable_fallback_to_log",
			slog.String("url", redact.URL(cfg.URL)),
			slog.String("err", err.Error()),
		)
		return revalidate.LogNotifier{}, func() {}
	}

	log.Info("revalidation_via_redis", slog.String("channel", cfg.Channel))
	return n, func() { _ = n.Close() }
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
