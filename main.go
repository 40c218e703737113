package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prenv/catalog-api/handlers"
	"github.com/prenv/catalog-api/internal/config"
	"github.com/prenv/catalog-api/internal/database"
	"github.com/prenv/catalog-api/internal/document/handler"
	"github.com/prenv/catalog-api/internal/document/service"
	"github.com/prenv/catalog-api/internal/systemlog"
	"github.com/prenv/catalog-api/pkg/logger"
	"github.com/prenv/catalog-api/pkg/metrics"
	"github.com/prenv/catalog-api/pkg/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// LOG_LEVEL is read again from config below; this covers config errors
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Server.LogLevel)
	if cfg.Server.Debug {
		logger.SetOutput(os.Stdout, true)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sysLog *systemlog.Store
	if cfg.SystemLog.Path != "" {
		sysLog, err = systemlog.Open(cfg.SystemLog.Path, cfg.Server.PRNumber)
		if err != nil {
			logger.Warnf("system log disabled: %v", err)
		}
	}
	defer sysLog.Close()

	dial, target := database.DialerFor(cfg.MongoDB)
	mgrOpts := []database.Option{}
	svcOpts := []service.Option{service.WithPRNumber(cfg.Server.PRNumber)}
	if sysLog != nil {
		mgrOpts = append(mgrOpts, database.WithEvents(sysLog))
		svcOpts = append(svcOpts, service.WithEvents(sysLog))
	}
	mgr := database.NewManager(dial, target, mgrOpts...)
	// A failed first connect is not fatal; the manager retries on the next lookup.
	if err := mgr.Connect(ctx); err != nil {
		logger.Warnf("document store not reachable at startup (%s): %v", target, err)
	}
	svc := service.New(mgr, svcOpts...)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(), middleware.CORS())

	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
		logger.Infof("rate limiter enabled: rps=%.1f burst=%d redis=%v", cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.UseRedis && redisClient != nil)
	}

	statusOpts := []handlers.StatusOption{}
	if sysLog != nil {
		statusOpts = append(statusOpts, handlers.WithSystemLog(sysLog))
	}
	if redisClient != nil && cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
		statusOpts = append(statusOpts, handlers.WithRedisCheck(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}))
	}
	handlers.NewStatusHandler(cfg, mgr, svc, statusOpts...).Register(r)
	handlers.RegisterSwagger(r)
	handler.RegisterRoutes(r, svc)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	_ = sysLog.Record(ctx, "INFO", fmt.Sprintf("service started on %s (store %s)", addr, target))
	logger.Infof("starting %s for PR %s on %s", handlers.ServiceName, cfg.Server.PRNumber, addr)

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("graceful shutdown failed: %v", err)
	}
	if err := mgr.Close(shutdownCtx); err != nil {
		logger.Warnf("closing document store: %v", err)
	}
	_ = sysLog.Record(shutdownCtx, "INFO", "service stopped")
}
